package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrCustomerNameIsRequired = errors.New("customerName is required")
	ErrPhoneNumberIsRequired  = errors.New("phoneNumber is required")
	ErrItemsAreRequired       = errors.New("at least one order item is required")
	ErrTotalIsInvalid         = errors.New("total must be greater than 0")
)

// CreateOrderCommand represents a request to register a new order and start
// its fulfillment workflow at the first stage.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	storeID      kernel.UUID
	customerName string
	phoneNumber  string
	items        []order.Item
	total        float64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order for a
// store. The order identifier is supplied by the caller so order creation
// stays idempotent across client retries.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	storeID kernel.UUID,
	customerName string,
	phoneNumber string,
	items []order.Item,
	total float64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(orderID, storeID),
		cmd.setCustomer(customerName, phoneNumber),
		cmd.setContents(items, total),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the new order will be created with.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// StoreID returns the identifier of the store the order belongs to.
func (c CreateOrderCommand) StoreID() kernel.UUID {
	return c.storeID
}

// CustomerName returns the name of the ordering customer.
func (c CreateOrderCommand) CustomerName() string {
	return c.customerName
}

// PhoneNumber returns the customer's contact phone number.
func (c CreateOrderCommand) PhoneNumber() string {
	return c.phoneNumber
}

// Items returns the ordered items.
func (c CreateOrderCommand) Items() []order.Item {
	return c.items
}

// Total returns the order total.
func (c CreateOrderCommand) Total() float64 {
	return c.total
}

func (c *CreateOrderCommand) setIDs(orderID, storeID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := storeID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("storeID", err)
	}

	c.orderID = orderID
	c.storeID = storeID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customerName, phoneNumber string) error {
	if customerName == "" {
		return ErrCustomerNameIsRequired
	}
	if phoneNumber == "" {
		return ErrPhoneNumberIsRequired
	}

	c.customerName = customerName
	c.phoneNumber = phoneNumber
	return nil
}

func (c *CreateOrderCommand) setContents(items []order.Item, total float64) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	if total <= 0 {
		return ErrTotalIsInvalid
	}

	c.items = items
	c.total = total
	return nil
}
