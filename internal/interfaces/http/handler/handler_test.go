package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/clynova/cantabria-cart/internal/application/cart"
	appcheckout "github.com/clynova/cantabria-cart/internal/application/checkout"
	"github.com/clynova/cantabria-cart/internal/domain/cart"
	"github.com/clynova/cantabria-cart/internal/domain/pricing"
	"github.com/clynova/cantabria-cart/internal/domain/shared/valueobject"
	"github.com/clynova/cantabria-cart/internal/infrastructure/auth"
	"github.com/clynova/cantabria-cart/internal/infrastructure/config"
	"github.com/clynova/cantabria-cart/internal/infrastructure/persistence"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/middleware"
	"github.com/clynova/cantabria-cart/internal/interfaces/http/router"
)

type stubSnapshots struct {
	snapshots map[cart.LineKey]*cart.VariantSnapshot
	err       error
}

func (s *stubSnapshots) VariantSnapshot(ctx context.Context, productID, variantID uuid.UUID) (*cart.VariantSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	if snap, ok := s.snapshots[cart.LineKey{ProductID: productID, VariantID: variantID}]; ok {
		return snap, nil
	}
	return nil, context.DeadlineExceeded
}

type stubRemote struct {
	lines []cart.RemoteLine
}

func (r *stubRemote) FetchCart(ctx context.Context, userID uuid.UUID) ([]cart.RemoteLine, error) {
	return r.lines, nil
}

func (r *stubRemote) AddLine(ctx context.Context, userID uuid.UUID, line cart.RemoteLine) error {
	return nil
}

func (r *stubRemote) UpdateQuantity(ctx context.Context, userID uuid.UUID, key cart.LineKey, quantity int, mode cart.QuantityMode) error {
	return nil
}

func (r *stubRemote) RemoveLine(ctx context.Context, userID uuid.UUID, key cart.LineKey) error {
	return nil
}

func (r *stubRemote) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubGuard struct{}

func (g *stubGuard) Begin(ctx context.Context, userID uuid.UUID) (bool, error) { return true, nil }
func (g *stubGuard) End(ctx context.Context, userID uuid.UUID) error           { return nil }

type stubShipping struct{}

func (s *stubShipping) ShippingPolicy(ctx context.Context, methodID uuid.UUID) (*pricing.ShippingPolicy, error) {
	base := valueobject.NewMoneyCLPFromInt(2000)
	return &pricing.ShippingPolicy{BaseCost: base}, nil
}

type stubPayment struct{}

func (s *stubPayment) PaymentPolicy(ctx context.Context, methodID uuid.UUID) (*pricing.PaymentPolicy, error) {
	return &pricing.PaymentPolicy{}, nil
}

type testEnv struct {
	engine   *gin.Engine
	sessions *auth.SessionService
	repo     *persistence.InMemoryCartRepository
	catalog  *stubSnapshots
	remote   *stubRemote
}

func setupEnv(t *testing.T, debounce time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := persistence.NewInMemoryCartRepository()
	catalog := &stubSnapshots{snapshots: make(map[cart.LineKey]*cart.VariantSnapshot)}
	remote := &stubRemote{}
	logger := zap.NewNop()

	cartService := appcart.NewCartService(repo, catalog, remote, logger)
	quantityService := appcart.NewQuantityService(repo, catalog, remote, debounce, logger)
	syncService := appcart.NewSyncService(repo, remote, catalog, &stubGuard{}, logger)
	checkoutService := appcheckout.NewCheckoutService(repo, remote, &stubShipping{}, &stubPayment{}, logger)

	sessions := auth.NewSessionService(config.JWTConfig{
		Secret:     "handler-test-secret-key-value",
		Expiration: time.Hour,
		Issuer:     "cantabria-cart",
	})

	engine := gin.New()
	engine.Use(middleware.SessionAuthMiddleware(sessions))

	r := router.NewRouter(engine)
	r.Register(NewSessionHandler(sessions, cartService, syncService))
	r.Register(NewCartHandler(cartService, quantityService, syncService))
	r.Register(NewCheckoutHandler(checkoutService))
	r.Setup()

	return &testEnv{engine: engine, sessions: sessions, repo: repo, catalog: catalog, remote: remote}
}

func (env *testEnv) addVariant(priceCLP int64, stock int) cart.LineKey {
	key := cart.LineKey{ProductID: uuid.New(), VariantID: uuid.New()}
	price := valueobject.NewMoneyCLPFromInt(priceCLP)
	weight, _ := valueobject.NewWeightFromFloat(500, valueobject.WeightGrams)
	env.catalog.snapshots[key] = &cart.VariantSnapshot{
		Price:      &price,
		Stock:      stock,
		UnitWeight: weight,
	}
	return key
}

func (env *testEnv) userToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := env.sessions.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestCartRoutes_RequireSession(t *testing.T) {
	env := setupEnv(t, 0)

	w := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddLineAndGetCart(t *testing.T) {
	env := setupEnv(t, 0)
	userID := uuid.New()
	token := env.userToken(t, userID)
	key := env.addVariant(1000, 10)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", token, appcart.AddLineRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var added AddLineResponse
	decodeData(t, w, &added)
	assert.True(t, added.Result.Applied)
	assert.Equal(t, 3, added.Result.Quantity)

	w = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got appcart.CartResponse
	decodeData(t, w, &got)
	require.Len(t, got.Lines, 1)
	require.NotNil(t, got.Breakdown)
	assert.Equal(t, 3000.0, got.Breakdown.Subtotal)
}

func TestAddLine_OutOfStockConflicts(t *testing.T) {
	env := setupEnv(t, 0)
	token := env.userToken(t, uuid.New())
	key := env.addVariant(1000, 0)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", token, appcart.AddLineRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_STALE_STOCK", errorCode(t, w))
}

func TestUpdateQuantity_SecondRapidRequestDroppedSilently(t *testing.T) {
	env := setupEnv(t, 200*time.Millisecond)
	userID := uuid.New()
	token := env.userToken(t, userID)
	key := env.addVariant(1000, 10)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", token, appcart.AddLineRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	update := appcart.UpdateQuantityRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Magnitude: 1,
		Mode:      "increment",
	}

	first := env.do(t, http.MethodPatch, "/api/v1/cart/items/quantity", token, update)
	require.Equal(t, http.StatusOK, first.Code)
	var firstResult appcart.UpdateQuantityResult
	decodeData(t, first, &firstResult)
	assert.True(t, firstResult.Applied)
	assert.Equal(t, 3, firstResult.Quantity)

	second := env.do(t, http.MethodPatch, "/api/v1/cart/items/quantity", token, update)
	require.Equal(t, http.StatusOK, second.Code)
	var secondResult appcart.UpdateQuantityResult
	decodeData(t, second, &secondResult)
	assert.False(t, secondResult.Applied)
	assert.NotEmpty(t, secondResult.Notice)
}

func TestRemoveLine_InvalidIDRejected(t *testing.T) {
	env := setupEnv(t, 0)
	token := env.userToken(t, uuid.New())

	w := env.do(t, http.MethodDelete, "/api/v1/cart/items/not-a-uuid/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestSessionAndLoginAdoptsCart(t *testing.T) {
	env := setupEnv(t, 0)

	w := env.do(t, http.MethodPost, "/api/v1/session/guest", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var guestSession SessionResponse
	decodeData(t, w, &guestSession)
	assert.True(t, guestSession.Guest)

	key := env.addVariant(1500, 10)
	w = env.do(t, http.MethodPost, "/api/v1/cart/items", guestSession.Token, appcart.AddLineRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	userID := uuid.New()
	w = env.do(t, http.MethodPost, "/api/v1/session/login", guestSession.Token, LoginRequest{
		UserID: userID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login LoginResponse
	decodeData(t, w, &login)
	assert.False(t, login.Session.Guest)
	require.NotNil(t, login.Cart)
	require.Len(t, login.Cart.Cart.Lines, 1)
	assert.Equal(t, 2, login.Cart.Cart.Lines[0].Quantity)

	saved, err := env.repo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, saved.Lines, 1)
}

// Every surface that displays money derives it from the same pricing
// calculation, so the cart view, the checkout quote and the reconcile
// report must agree to the cent on identical cart contents.
func TestAllTotalSurfacesAgree(t *testing.T) {
	env := setupEnv(t, 0)
	userID := uuid.New()
	token := env.userToken(t, userID)

	first := env.addVariant(15990, 10)
	second := env.addVariant(4500, 10)
	for key, qty := range map[cart.LineKey]int{first: 2, second: 3} {
		w := env.do(t, http.MethodPost, "/api/v1/cart/items", token, appcart.AddLineRequest{
			ProductID: key.ProductID.String(),
			VariantID: key.VariantID.String(),
			Quantity:  qty,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view appcart.CartResponse
	decodeData(t, w, &view)
	require.NotNil(t, view.Breakdown)

	w = env.do(t, http.MethodPost, "/api/v1/checkout/quote", token, appcheckout.QuoteRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote appcheckout.QuoteResponse
	decodeData(t, w, &quote)

	w = env.do(t, http.MethodPost, "/api/v1/cart/reconcile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reconciled appcart.ReconcileResult
	decodeData(t, w, &reconciled)
	require.NotNil(t, reconciled.Cart.Breakdown)

	assert.Equal(t, 2*15990.0+3*4500.0, view.Breakdown.Subtotal)
	assert.Equal(t, *view.Breakdown, quote.Breakdown)
	assert.Equal(t, *view.Breakdown, *reconciled.Cart.Breakdown)
	assert.Equal(t, view.Breakdown.Subtotal+view.Breakdown.ShippingCost+view.Breakdown.PaymentCommission,
		view.Breakdown.Total)
}

func TestCheckoutQuote_EmptyCartRejected(t *testing.T) {
	env := setupEnv(t, 0)
	token := env.userToken(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/checkout/quote", token, appcheckout.QuoteRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_EMPTY_CART", errorCode(t, w))
}

func TestCheckoutQuoteAndComplete(t *testing.T) {
	env := setupEnv(t, 0)
	userID := uuid.New()
	token := env.userToken(t, userID)
	key := env.addVariant(5000, 10)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", token, appcart.AddLineRequest{
		ProductID: key.ProductID.String(),
		VariantID: key.VariantID.String(),
		Quantity:  2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/checkout/quote", token, appcheckout.QuoteRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote appcheckout.QuoteResponse
	decodeData(t, w, &quote)
	assert.Equal(t, 10000.0, quote.Breakdown.Subtotal)

	w = env.do(t, http.MethodPost, "/api/v1/checkout/complete", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var emptied appcart.CartResponse
	decodeData(t, w, &emptied)
	assert.Empty(t, emptied.Lines)
}
