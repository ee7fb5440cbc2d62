package cart

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prostorehq/storefront-backend/pkg/db/models"
	"github.com/prostorehq/storefront-backend/pkg/logger"
)

func TestAddItemRequiresSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &stubCartRepo{}, &stubProductLoader{})

	res := svc.AddItem(context.Background(), Identity{}, ItemInput{ProductID: uuid.New(), Name: "Tee", Slug: "tee", Qty: 1})
	if res.Success {
		t.Fatal("expected failure without session")
	}
	if res.Message != "Cart session not found" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestAddItemProductNotFound(t *testing.T) {
	t.Parallel()

	products := &stubProductLoader{err: gorm.ErrRecordNotFound}
	svc, _ := newTestService(t, &stubCartRepo{}, products)

	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, ItemInput{ProductID: uuid.New(), Name: "Tee", Slug: "tee", Qty: 1})
	if res.Success {
		t.Fatal("expected failure for missing product")
	}
	if res.Message != "Product not found" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestAddItemCreatesCartLazily(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	repo := &stubCartRepo{}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Item added to cart successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.created == nil {
		t.Fatal("expected cart to be created")
	}
	if repo.created.SessionCartID != "session-1" {
		t.Fatalf("unexpected session cart id %q", repo.created.SessionCartID)
	}
	if got := repo.created.TotalPrice.StringFixed(2); got != "67.50" {
		t.Fatalf("unexpected total price %s", got)
	}
	if len(hook.paths) != 1 || hook.paths[0] != "/product/classic-tee" {
		t.Fatalf("unexpected invalidated paths %v", hook.paths)
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	existing := &models.Cart{
		ID:            uuid.New(),
		SessionCartID: "session-1",
		Items: models.CartItems{{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Qty:       1,
		}},
	}
	repo := &stubCartRepo{cart: existing}
	svc, _ := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Classic Tee updated in cart successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.updated == nil || repo.updated.Items[0].Qty != 2 {
		t.Fatalf("expected quantity 2, got %+v", repo.updated)
	}
	// 100.00 is not strictly above the threshold, so shipping still applies.
	if got := repo.updated.ShippingPrice.StringFixed(2); got != "10.00" {
		t.Fatalf("unexpected shipping price %s", got)
	}
}

func TestAddItemOutOfStockOnIncrement(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 1)
	existing := &models.Cart{
		ID:            uuid.New(),
		SessionCartID: "session-1",
		Items: models.CartItems{{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Qty:       1,
		}},
	}
	repo := &stubCartRepo{cart: existing}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if res.Success {
		t.Fatal("expected out of stock failure")
	}
	if res.Message != "Product out of stock" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.updated != nil {
		t.Fatal("cart must not be updated on stock failure")
	}
	if len(hook.paths) != 0 {
		t.Fatal("no invalidation expected on failure")
	}
}

func TestAddItemFirstAddSkipsStockCheck(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 0)
	repo := &stubCartRepo{}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if !res.Success {
		t.Fatalf("expected cart creation regardless of stock, got %q", res.Message)
	}
	if res.Message != "Item added to cart successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.created == nil {
		t.Fatal("expected cart to be created")
	}
	if len(hook.paths) != 1 {
		t.Fatalf("expected one invalidation, got %d", len(hook.paths))
	}
}

func TestAddItemNewLineNeedsStock(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 0)
	other := newTestProduct("Canvas Tote", "canvas-tote", "20.00", 3)
	existing := &models.Cart{
		ID:            uuid.New(),
		SessionCartID: "session-1",
		Items: models.CartItems{{
			ProductID: other.ID,
			Name:      other.Name,
			Slug:      other.Slug,
			Price:     other.Price,
			Qty:       1,
		}},
	}
	repo := &stubCartRepo{cart: existing}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if res.Success {
		t.Fatal("expected stock failure")
	}
	if res.Message != "Not enough stock" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.updated != nil {
		t.Fatal("cart must not be updated on stock failure")
	}
	if len(hook.paths) != 0 {
		t.Fatal("no invalidation expected on failure")
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &stubCartRepo{}, &stubProductLoader{})

	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, ItemInput{})
	if res.Success {
		t.Fatal("expected validation failure")
	}
}

func TestAddItemOpaqueFailure(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	repo := &stubCartRepo{createErr: errors.New("connection reset")}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})

	input := ItemInput{ProductID: product.ID, Name: product.Name, Slug: product.Slug, Price: product.Price, Qty: 1}
	res := svc.AddItem(context.Background(), Identity{SessionCartID: "session-1"}, input)

	if res.Success {
		t.Fatal("expected failure on persistence fault")
	}
	if res.Message != "Unable to update cart. Please try again." {
		t.Fatalf("expected generic message, got %q", res.Message)
	}
	if len(hook.paths) != 0 {
		t.Fatal("no invalidation expected on failure")
	}
}

func TestRemoveItemDecrementsAndDrops(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	existing := &models.Cart{
		ID:            uuid.New(),
		SessionCartID: "session-1",
		Items: models.CartItems{{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     product.Price,
			Qty:       2,
		}},
	}
	repo := &stubCartRepo{cart: existing}
	svc, hook := newTestService(t, repo, &stubProductLoader{product: product})
	identity := Identity{SessionCartID: "session-1"}

	res := svc.RemoveItem(context.Background(), identity, product.ID)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Classic Tee updated in cart successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if repo.updated.Items[0].Qty != 1 {
		t.Fatalf("expected quantity 1, got %d", repo.updated.Items[0].Qty)
	}

	res = svc.RemoveItem(context.Background(), identity, product.ID)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if res.Message != "Classic Tee removed from cart successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if len(repo.updated.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(repo.updated.Items))
	}
	if len(hook.paths) != 2 {
		t.Fatalf("expected two invalidations, got %d", len(hook.paths))
	}
}

func TestRemoveItemCartNotFound(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	svc, _ := newTestService(t, &stubCartRepo{}, &stubProductLoader{product: product})

	res := svc.RemoveItem(context.Background(), Identity{SessionCartID: "session-1"}, product.ID)
	if res.Success {
		t.Fatal("expected failure for missing cart")
	}
	if res.Message != "Cart not found" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestRemoveItemItemNotFound(t *testing.T) {
	t.Parallel()

	product := newTestProduct("Classic Tee", "classic-tee", "50.00", 5)
	existing := &models.Cart{ID: uuid.New(), SessionCartID: "session-1", Items: models.CartItems{}}
	svc, _ := newTestService(t, &stubCartRepo{cart: existing}, &stubProductLoader{product: product})

	res := svc.RemoveItem(context.Background(), Identity{SessionCartID: "session-1"}, product.ID)
	if res.Success {
		t.Fatal("expected failure for missing item")
	}
	if res.Message != "Item not found" {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestGetMyCart(t *testing.T) {
	t.Parallel()

	existing := &models.Cart{ID: uuid.New(), SessionCartID: "session-1"}
	svc, _ := newTestService(t, &stubCartRepo{cart: existing}, &stubProductLoader{})

	cart, err := svc.GetMyCart(context.Background(), Identity{SessionCartID: "session-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart != existing {
		t.Fatal("expected stored cart")
	}

	cart, err = svc.GetMyCart(context.Background(), Identity{})
	if err != nil || cart != nil {
		t.Fatalf("expected nil cart without session, got %v / %v", cart, err)
	}

	svcEmpty, _ := newTestService(t, &stubCartRepo{}, &stubProductLoader{})
	cart, err = svcEmpty.GetMyCart(context.Background(), Identity{SessionCartID: "session-1"})
	if err != nil || cart != nil {
		t.Fatalf("expected nil cart when none exists, got %v / %v", cart, err)
	}
}

func newTestService(t *testing.T, repo CartRepository, products productLoader) (Service, *recordingHook) {
	t.Helper()
	hook := &recordingHook{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, products, hook, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, hook
}

func newTestProduct(name, slug, price string, stock int) *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Slug:  slug,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

type stubCartRepo struct {
	cart      *models.Cart
	created   *models.Cart
	updated   *models.Cart
	createErr error
	updateErr error
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindByOwner(ctx context.Context, identity Identity) (*models.Cart, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = cart
	return cart, nil
}

func (s *stubCartRepo) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = cart
	return cart, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	product *models.Product
	err     error
}

func (s *stubProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

type recordingHook struct {
	paths []string
}

func (r *recordingHook) Invalidate(ctx context.Context, path string) {
	r.paths = append(r.paths, path)
}
