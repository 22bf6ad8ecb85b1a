package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/account"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/report"
)

func (s *Server) listTenants(c *gin.Context) {
	tenants, err := s.repo.Catalog.ListTenants(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

func (s *Server) getTenant(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	t, err := s.repo.Catalog.GetTenant(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) listTenantMenus(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.repo.Catalog.GetTenant(ctx, id); err != nil {
		s.fail(c, err)
		return
	}
	menus, err := s.repo.Catalog.ListMenusByTenant(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

// listMenus searches by ?q= or filters by ?category=. With neither it
// returns every menu.
func (s *Server) listMenus(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		menus []model.Menu
		err   error
	)
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		menus, err = s.repo.Catalog.MenusByCategory(ctx, cat)
	} else {
		menus, err = s.repo.Catalog.SearchMenus(ctx, c.Query("q"))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

func (s *Server) getMenu(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	m, err := s.repo.Catalog.GetMenu(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.repo.Catalog.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !s.bindJSON(c, &req) {
		return
	}
	u, err := s.repo.Accounts.Register(c.Request.Context(), account.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	u, err := s.repo.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) getCart(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	v, err := s.repo.CartView(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type addToCartRequest struct {
	MenuID   int64  `json:"menu_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

func (s *Server) addToCart(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	req := addToCartRequest{Quantity: 1}
	if !s.bindJSON(c, &req) {
		return
	}
	lineID, err := s.repo.AddToCart(c.Request.Context(), userID, req.MenuID, req.Quantity, req.Note)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart_id": lineID})
}

func (s *Server) clearCart(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	n, err := s.repo.ClearCart(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

type updateLineRequest struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note"`
}

func (s *Server) updateCartLine(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req updateLineRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.Quantity == nil && req.Note == nil {
		s.badRequest(c, "quantity or note required")
		return
	}
	ctx := c.Request.Context()
	if req.Note != nil {
		if err := s.repo.UpdateNote(ctx, id, *req.Note); err != nil {
			s.fail(c, err)
			return
		}
	}
	if req.Quantity != nil {
		if err := s.repo.SetQuantity(ctx, id, *req.Quantity); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeCartLine(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.repo.RemoveLine(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	ConfirmedTotal *decimal.Decimal `json:"confirmed_total"`
	PaymentMethod  string           `json:"payment_method"`
}

func (s *Server) checkout(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.ConfirmedTotal == nil {
		s.badRequest(c, "confirmed_total required")
		return
	}
	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}
	receipt, err := s.repo.Checkout(c.Request.Context(), userID, *req.ConfirmedTotal, method)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (s *Server) listOrders(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	orders, err := s.repo.ListOrders(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	d, err := s.repo.OrderDetail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) transition(c *gin.Context, fn func(*gin.Context, int64) (model.Order, error)) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	o, err := fn(c, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) completeOrder(c *gin.Context) {
	s.transition(c, func(c *gin.Context, id int64) (model.Order, error) {
		return s.repo.CompleteOrder(c.Request.Context(), id)
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	s.transition(c, func(c *gin.Context, id int64) (model.Order, error) {
		return s.repo.CancelOrder(c.Request.Context(), id)
	})
}

func (s *Server) markPaid(c *gin.Context) {
	s.transition(c, func(c *gin.Context, id int64) (model.Order, error) {
		return s.repo.MarkPaid(c.Request.Context(), id)
	})
}

func (s *Server) cancelPayment(c *gin.Context) {
	s.transition(c, func(c *gin.Context, id int64) (model.Order, error) {
		return s.repo.CancelPayment(c.Request.Context(), id)
	})
}

// exportOrders streams the user's order history as an XLSX attachment.
func (s *Server) exportOrders(c *gin.Context) {
	userID, ok := s.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.repo.Accounts.Get(ctx, userID); err != nil {
		s.fail(c, err)
		return
	}
	details, err := s.repo.OrderHistory(ctx, userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", report.ContentType)
	if err := report.WriteOrderHistory(c.Writer, details); err != nil {
		s.logger.Error("export orders", "user_id", userID, "error", err)
	}
}
