package domain

import (
	"encoding/json"
	"fmt"
)

// Event names as they travel on the realtime channel.
const (
	EventInitialOrders     = "initialOrders"
	EventOrderCreated      = "orderCreated"
	EventOrderUpdated      = "orderUpdated"
	EventOrderError        = "orderError"
	EventUpdateError       = "updateError"
	EventNewOrder          = "newOrder"
	EventUpdateOrderStatus = "updateOrderStatus"
)

// Event is a server-to-client message. The set of implementations is closed:
// each one dispatches to the matching EventHandler method, so adding a kind
// breaks every handler until it is handled.
type Event interface {
	Name() string
	Dispatch(h EventHandler)
}

type EventHandler interface {
	OnInitialOrders(InitialOrdersEvent)
	OnOrderCreated(OrderCreatedEvent)
	OnOrderUpdated(OrderUpdatedEvent)
	OnOrderError(OrderErrorEvent)
	OnUpdateError(UpdateErrorEvent)
}

type InitialOrdersEvent struct {
	Orders []Order `json:"orders"`
}

type OrderCreatedEvent struct {
	Order Order `json:"order"`
}

type OrderUpdatedEvent struct {
	Order Order `json:"order"`
}

type OrderErrorEvent struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type UpdateErrorEvent struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (InitialOrdersEvent) Name() string { return EventInitialOrders }
func (OrderCreatedEvent) Name() string  { return EventOrderCreated }
func (OrderUpdatedEvent) Name() string  { return EventOrderUpdated }
func (OrderErrorEvent) Name() string    { return EventOrderError }
func (UpdateErrorEvent) Name() string   { return EventUpdateError }

func (e InitialOrdersEvent) Dispatch(h EventHandler) { h.OnInitialOrders(e) }
func (e OrderCreatedEvent) Dispatch(h EventHandler)  { h.OnOrderCreated(e) }
func (e OrderUpdatedEvent) Dispatch(h EventHandler)  { h.OnOrderUpdated(e) }
func (e OrderErrorEvent) Dispatch(h EventHandler)    { h.OnOrderError(e) }
func (e UpdateErrorEvent) Dispatch(h EventHandler)   { h.OnUpdateError(e) }

// Command is a client-to-server message.
type Command interface {
	Name() string
	command()
}

type NewOrderCommand struct {
	Request CreateOrderRequest `json:"request"`
}

type UpdateOrderStatusCommand struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

func (NewOrderCommand) Name() string          { return EventNewOrder }
func (UpdateOrderStatusCommand) Name() string { return EventUpdateOrderStatus }
func (NewOrderCommand) command()              {}
func (UpdateOrderStatusCommand) command()     {}

// Envelope is the JSON frame for both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func encode(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return json.Marshal(Envelope{Event: name, Data: data})
}

func EncodeEvent(e Event) ([]byte, error) {
	return encode(e.Name(), e)
}

func EncodeCommand(c Command) ([]byte, error) {
	return encode(c.Name(), c)
}

func DecodeEvent(b []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	var (
		evt Event
		err error
	)
	switch env.Event {
	case EventInitialOrders:
		var e InitialOrdersEvent
		err = json.Unmarshal(env.Data, &e)
		evt = e
	case EventOrderCreated:
		var e OrderCreatedEvent
		err = json.Unmarshal(env.Data, &e)
		evt = e
	case EventOrderUpdated:
		var e OrderUpdatedEvent
		err = json.Unmarshal(env.Data, &e)
		evt = e
	case EventOrderError:
		var e OrderErrorEvent
		err = json.Unmarshal(env.Data, &e)
		evt = e
	case EventUpdateError:
		var e UpdateErrorEvent
		err = json.Unmarshal(env.Data, &e)
		evt = e
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Event, err)
	}
	return evt, nil
}

func DecodeCommand(b []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Event {
	case EventNewOrder:
		var c NewOrderCommand
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return c, nil
	case EventUpdateOrderStatus:
		var c UpdateOrderStatusCommand
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown command %q", env.Event)
	}
}
