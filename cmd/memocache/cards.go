package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/IvanBrykalov/memocache/config"
	"github.com/IvanBrykalov/memocache/memo"
	"github.com/IvanBrykalov/memocache/registry"
)

// Card is a demo catalogue entry.
type Card struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Button is an order action shown on a card.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

var errCardNotFound = errors.New("card not found")

// cardService stands in for a slow backend. Every call sleeps for latency.
type cardService struct {
	latency time.Duration
	cards   []Card
	calls   atomic.Int64
}

func newCardService(latency time.Duration) *cardService {
	return &cardService{
		latency: latency,
		cards: []Card{
			{ID: 1, Title: "Flights"},
			{ID: 2, Title: "Hotels"},
			{ID: 3, Title: "Trains"},
		},
	}
}

func (s *cardService) wait(ctx context.Context) error {
	s.calls.Add(1)
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *cardService) Cards(ctx context.Context, _ struct{}) ([]Card, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return append([]Card(nil), s.cards...), nil
}

func (s *cardService) OrderButtons(ctx context.Context, cardID int) ([]Button, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	for _, c := range s.cards {
		if c.ID == cardID {
			return []Button{
				{Label: "Order", URL: fmt.Sprintf("/order?card=%d", c.ID)},
				{Label: "Details", URL: fmt.Sprintf("/cards/%d", c.ID)},
			}, nil
		}
	}
	return nil, errors.Wrapf(errCardNotFound, "id %d", cardID)
}

// cardAPI serves the memoized demo endpoints.
type cardAPI struct {
	cards   func(context.Context, struct{}) ([]Card, error)
	buttons func(context.Context, int) ([]Button, error)
}

func newCardAPI(reg *registry.Registry, svc *cardService) *cardAPI {
	return &cardAPI{
		cards: memo.WrapContext(reg, config.CardList, "get_cards", svc.Cards,
			memo.WithKey(func(struct{}) (string, error) { return "card_list_latest", nil })),
		buttons: memo.WrapContext(reg, config.OrderButtons, "get_order_buttons", svc.OrderButtons,
			memo.WithKey(func(id int) (string, error) { return "order_buttons_" + strconv.Itoa(id), nil })),
	}
}

func (a *cardAPI) mount(e *echo.Echo) {
	g := e.Group("/card/api")
	g.GET("/cards", a.listCards)
	g.GET("/order-buttons", a.orderButtons)
}

// GET /card/api/cards
func (a *cardAPI) listCards(c echo.Context) error {
	cards, err := a.cards(c.Request().Context(), struct{}{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"cards": cards})
}

// GET /card/api/order-buttons?card_id=
func (a *cardAPI) orderButtons(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("card_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "card_id must be an integer"})
	}
	buttons, err := a.buttons(c.Request().Context(), id)
	switch {
	case errors.Is(err, errCardNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"card_id": id, "buttons": buttons})
}
