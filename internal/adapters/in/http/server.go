// Package http exposes the order workflow over a REST API.
// It coordinates between HTTP handlers and application use cases.
package http

import (
	"errors"
	"net/http"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderItem is one order line in the create-order request.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	OrderID      string      `json:"orderId"`
	StoreID      string      `json:"storeId"`
	CustomerName string      `json:"customerName"`
	PhoneNumber  string      `json:"phoneNumber"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
}

// AdvanceOrderRequest is the body of POST /api/v1/orders/:id/advance.
// FromStage carries the stage the operator observed; the transition is
// rejected with 409 when the order moved on meanwhile.
type AdvanceOrderRequest struct {
	FromStage     int     `json:"fromStage"`
	ToStage       int     `json:"toStage"`
	MinutesSpent  int     `json:"minutesSpent"`
	BatchNumber   *int    `json:"batchNumber,omitempty"`
	DeliveryManID *string `json:"deliveryManId,omitempty"`
}

// CancelOrderRequest is the body of POST /api/v1/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// WorkflowStep is one completed stage in the status response history.
type WorkflowStep struct {
	Stage        string `json:"stage"`
	MinutesSpent int    `json:"minutesSpent"`
	CompletedAt  string `json:"completedAt"`
}

// OrderStatusResponse is the body of GET /api/v1/orders/:id/status.
type OrderStatusResponse struct {
	OrderID        string         `json:"orderId"`
	Stage          string         `json:"stage"`
	StageEnteredAt string         `json:"stageEnteredAt"`
	AlertStatus    string         `json:"alertStatus"`
	History        []WorkflowStep `json:"history"`
	BatchNumber    *int           `json:"batchNumber,omitempty"`
	DeliveryManID  *string        `json:"deliveryManId,omitempty"`
	CancelReason   string         `json:"cancelReason,omitempty"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler    commands.CreateOrderCommandHandler
	advanceOrderHandler   commands.AdvanceOrderCommandHandler
	cancelOrderHandler    commands.CancelOrderCommandHandler
	getOrderStatusHandler queries.GetOrderStatusQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	advanceOrderHandler commands.AdvanceOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:    createOrderHandler,
		advanceOrderHandler:   advanceOrderHandler,
		cancelOrderHandler:    cancelOrderHandler,
		getOrderStatusHandler: getOrderStatusHandler,
	}
}

// RegisterRoutes attaches all workflow endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/orders", s.CreateOrder)
	e.POST("/api/v1/orders/:id/advance", s.AdvanceOrder)
	e.POST("/api/v1/orders/:id/cancel", s.CancelOrder)
	e.GET("/api/v1/orders/:id/status", s.GetOrderStatus)
}

// CreateOrder handles POST /api/v1/orders - registers a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID := kernel.NewUUID()
	if req.OrderID != "" {
		parsed, err := kernel.UUIDFromString(req.OrderID)
		if err != nil {
			return badRequest(ctx, "Invalid order id")
		}
		orderID = parsed
	}

	storeID, err := kernel.UUIDFromString(req.StoreID)
	if err != nil {
		return badRequest(ctx, "Invalid store id")
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	cmd, err := commands.NewCreateOrderCommand(
		orderID, storeID, req.CustomerName, req.PhoneNumber, items, req.Total)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		if errors.Is(err, commands.ErrStoreNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Store not found",
			})
		}
		return internalError(ctx, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"orderId": orderID.String()})
}

// AdvanceOrder handles POST /api/v1/orders/:id/advance - moves an order one stage forward.
func (s *Server) AdvanceOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req AdvanceOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAdvanceOrderCommand(
		orderID, order.Stage(req.FromStage), order.Stage(req.ToStage), req.MinutesSpent)
	if err != nil {
		return badRequest(ctx, "Invalid transition: "+err.Error())
	}

	if req.BatchNumber != nil {
		cmd.SetBatchNumber(*req.BatchNumber)
	}
	if req.DeliveryManID != nil {
		deliveryManID, idErr := kernel.UUIDFromString(*req.DeliveryManID)
		if idErr != nil {
			return badRequest(ctx, "Invalid delivery man id")
		}
		cmd.SetDeliveryManID(deliveryManID)
	}

	return s.handleTransition(ctx, s.advanceOrderHandler.Handle(ctx.Request().Context(), cmd))
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - cancels an order.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req CancelOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation: "+err.Error())
	}

	return s.handleTransition(ctx, s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd))
}

// GetOrderStatus handles GET /api/v1/orders/:id/status - returns the workflow status.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	status, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if errors.Is(err, queries.ErrOrderNotFound) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	}
	if err != nil {
		return internalError(ctx, "Failed to retrieve order status")
	}

	history := make([]WorkflowStep, 0, len(status.History))
	for _, step := range status.History {
		history = append(history, WorkflowStep{
			Stage:        step.Stage.String(),
			MinutesSpent: step.MinutesSpent,
			CompletedAt:  step.CompletedAt.UTC().Format(time.RFC3339),
		})
	}

	resp := OrderStatusResponse{
		OrderID:        status.OrderID.String(),
		Stage:          status.Stage.String(),
		StageEnteredAt: status.StageEnteredAt.UTC().Format(time.RFC3339),
		AlertStatus:    status.AlertStatus.String(),
		History:        history,
		BatchNumber:    status.BatchNumber,
		CancelReason:   status.CancelReason,
	}
	if status.DeliveryManID != nil {
		id := status.DeliveryManID.String()
		resp.DeliveryManID = &id
	}

	return ctx.JSON(http.StatusOK, resp)
}

// handleTransition maps transition-command outcomes to HTTP statuses:
// 404 for unknown orders, 409 for lost races, 200 for success (including
// the idempotent no-op outcomes).
func (s *Server) handleTransition(ctx echo.Context, err error) error {
	switch {
	case err == nil:
		return ctx.NoContent(http.StatusOK)
	case errors.Is(err, commands.ErrOrderNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	case errors.Is(err, commands.ErrStageConflict):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Order changed concurrently, refresh and retry",
		})
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsOutOfRange):
		return badRequest(ctx, "Invalid transition: "+err.Error())
	default:
		return internalError(ctx, "Failed to process order transition")
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}
