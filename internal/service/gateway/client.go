package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"VoltMetrics/internal/domain/models"
	drepo "VoltMetrics/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements an EventStream backed by the storefront gateway WebSocket.
// The gateway pushes order line events for the channels we subscribe to.
type Client struct {
	apiKey         string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new storefront gateway EventStream.
func New(apiKey, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.EventStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("gateway connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("gateway: connected")
	return nil
}

// Subscribe subscribes to configured sales channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("gateway not connected")
	}
	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("gateway: subscribed %s", ch)
	}
	return nil
}

type gwLine struct {
	EventID      string  `json:"event_id"`
	OrderID      string  `json:"order_id"`
	SKU          string  `json:"sku"`
	Category     string  `json:"category"`
	Channel      string  `json:"channel"`
	Warehouse    string  `json:"warehouse"`
	Qty          float64 `json:"qty"`
	Price        float64 `json:"price"`
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Discount     float64 `json:"discount"`
	PickSeconds  float64 `json:"pick_seconds"`
	Filled       float64 `json:"filled"`
	Returned     float64 `json:"returned"`
	Satisfaction float64 `json:"satisfaction"`
	T            int64   `json:"t"` // ms
	OrgID        string  `json:"org_id"`
}

type gwMessage struct {
	Type string   `json:"type"`
	Data []gwLine `json:"data"`
}

// Read streams sale events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.SaleEvent, <-chan error) {
	events := make(chan *models.SaleEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("gateway conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateway read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-sale frames
					continue
				}
				if m.Type != "sale" {
					continue
				}
				for _, d := range m.Data {
					ev := &models.SaleEvent{
						EventID:      d.EventID,
						OrderID:      d.OrderID,
						SKU:          d.SKU,
						Category:     d.Category,
						Channel:      d.Channel,
						Warehouse:    d.Warehouse,
						Quantity:     d.Qty,
						UnitPrice:    d.Price,
						Revenue:      d.Revenue,
						Cost:         d.Cost,
						Discount:     d.Discount,
						PickSeconds:  d.PickSeconds,
						Filled:       d.Filled,
						Returned:     d.Returned,
						Satisfaction: d.Satisfaction,
						Timestamp:    d.T / 1000,
						OrgID:        d.OrgID,
					}
					select {
					case events <- ev:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
