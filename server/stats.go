package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	mSocketRequest    = stats.Int64("uno/socket_requests", "Socket Request Count", "1")
	mSocketConnection = stats.Int64("uno/socket_connections", "Open Socket Connection Count", "1")
	mMatchCreated     = stats.Int64("uno/matches_created", "Created Match Count", "1")
	mMatchFinished    = stats.Int64("uno/matches_finished", "Finished Match Count", "1")
	mCardPlayed       = stats.Int64("uno/cards_played", "Played Card Count", "1")
	mDeliveryFailure  = stats.Int64("uno/delivery_failures", "Failed Outbound Message Count", "1")

	registerViewsOnce sync.Once
	registerViewsErr  error
	keyCardValue      tag.Key
)

func registerViews() error {
	registerViewsOnce.Do(func() {
		keyCardValue, registerViewsErr = tag.NewKey("card_value")
		if registerViewsErr != nil {
			return
		}
		registerViewsErr = view.Register(
			&view.View{Name: "uno/socket_requests_sum", Measure: mSocketRequest, Description: "The number of total socket requests", Aggregation: view.Sum()},
			&view.View{Name: "uno/socket_connections_sum", Measure: mSocketConnection, Description: "The number of open socket connections", Aggregation: view.Sum()},
			&view.View{Name: "uno/matches_created_sum", Measure: mMatchCreated, Description: "The number of created matches", Aggregation: view.Sum()},
			&view.View{Name: "uno/matches_finished_sum", Measure: mMatchFinished, Description: "The number of finished matches", Aggregation: view.Sum()},
			&view.View{Name: "uno/cards_played_sum", Measure: mCardPlayed, Description: "The number of played cards by value", Aggregation: view.Sum(), TagKeys: []tag.Key{keyCardValue}},
			&view.View{Name: "uno/delivery_failures_sum", Measure: mDeliveryFailure, Description: "The number of messages that could not be queued", Aggregation: view.Sum()},
		)
	})
	return registerViewsErr
}

type Stats struct {
	prometheusExporter *prometheus.Exporter
}

func NewStats() (*Stats, error) {
	if err := registerViews(); err != nil {
		return nil, errors.Wrap(err, "register stat views")
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "uno",
	})
	if err != nil {
		return nil, errors.Wrap(err, "create prometheus exporter")
	}
	view.RegisterExporter(pe)

	return &Stats{
		prometheusExporter: pe,
	}, nil
}

// Handler serves the prometheus scrape endpoint.
func (s *Stats) Handler() http.Handler {
	return s.prometheusExporter
}

func (s *Stats) Close() {
	view.UnregisterExporter(s.prometheusExporter)
}

func (s *Stats) IncrSocketRequest() {
	stats.Record(context.Background(), mSocketRequest.M(1))
}

func (s *Stats) IncrSocketConnection() {
	stats.Record(context.Background(), mSocketConnection.M(1))
}

func (s *Stats) DecrSocketConnection() {
	stats.Record(context.Background(), mSocketConnection.M(-1))
}

func (s *Stats) IncrMatchCreated() {
	stats.Record(context.Background(), mMatchCreated.M(1))
}

func (s *Stats) IncrMatchFinished() {
	stats.Record(context.Background(), mMatchFinished.M(1))
}

func (s *Stats) IncrCardPlayed(value string) {
	ctx, err := tag.New(context.Background(), tag.Upsert(keyCardValue, value))
	if err != nil {
		ctx = context.Background()
	}
	stats.Record(ctx, mCardPlayed.M(1))
}

func (s *Stats) IncrDeliveryFailure() {
	stats.Record(context.Background(), mDeliveryFailure.M(1))
}
