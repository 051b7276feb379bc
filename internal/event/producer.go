package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wjkaliman/bookstore/internal/domain"
	pkgkafka "github.com/wjkaliman/bookstore/pkg/kafka"
)

// Kafka topic constants for store domain events.
const (
	TopicOrderCreated = "bookstore.order.created"
	TopicBookCreated  = "bookstore.book.created"
	TopicBookUpdated  = "bookstore.book.updated"
	TopicBookDeleted  = "bookstore.book.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeBook  = "book"
)

// Source identifier for events originating from the store.
const SourceBookstore = "bookstore"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID        string          `json:"id"`
	PublicID  string          `json:"public_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Items     []OrderItemData `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	PromoCode string          `json:"promo_code,omitempty"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// BookChangedData is the payload for book.created, book.updated and
// book.deleted events.
type BookChangedData struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Producer publishes store domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the store.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:        order.ID,
		PublicID:  order.PublicID,
		Name:      order.Name,
		Email:     order.Email,
		Items:     items,
		Subtotal:  order.Subtotal,
		Discount:  order.Discount,
		Shipping:  order.Shipping,
		Tax:       order.Tax,
		Total:     order.Total,
		PromoCode: order.PromoCode,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceBookstore, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("public_id", order.PublicID),
	)

	return nil
}

// PublishBookChanged publishes a catalog change event for the given topic.
func (p *Producer) PublishBookChanged(ctx context.Context, topic string, book *domain.Book) error {
	data := BookChangedData{
		ID:       book.ID,
		Slug:     book.Slug,
		Title:    book.Title,
		Category: book.Category,
	}

	event, err := pkgkafka.NewEvent(topic, book.ID, AggregateTypeBook, SourceBookstore, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published catalog event",
		slog.String("topic", topic),
		slog.String("book_id", book.ID),
		slog.String("slug", book.Slug),
	)

	return nil
}
