package worker

// alerta_worker.go
// Consumes negative-stock alerts from QueueAlertasStock and keeps the latest
// alert per product in a Redis hash.

import (
	"context"
	"encoding/json"
	"sort"

	"contalink/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const AlertasStockKey = "alertas:stock"

// AlertaStore persists stock alerts keyed by product id.
type AlertaStore struct {
	rdb *redis.Client
}

func NewAlertaStore(rdb *redis.Client) *AlertaStore {
	return &AlertaStore{rdb: rdb}
}

func (s *AlertaStore) Guardar(ctx context.Context, a dto.AlertaStock) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, AlertasStockKey, a.ProductoID, data).Err()
}

// Listar returns every stored alert ordered by product id.
func (s *AlertaStore) Listar(ctx context.Context) ([]dto.AlertaStock, error) {
	raw, err := s.rdb.HGetAll(ctx, AlertasStockKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertaStock, 0, len(raw))
	for field, v := range raw {
		var a dto.AlertaStock
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			log.Warn().Err(err).Str("producto_id", field).Msg("alerta_worker: skipping corrupt alert")
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductoID < out[j].ProductoID })
	return out, nil
}

// AlertaWorker processes alert jobs.
type AlertaWorker struct {
	store *AlertaStore
}

func NewAlertaWorker(store *AlertaStore) *AlertaWorker {
	return &AlertaWorker{store: store}
}

// Process stores the alert. A malformed payload is not retried.
func (w *AlertaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var a dto.AlertaStock
	if err := json.Unmarshal(raw, &a); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil
	}
	if a.ProductoID == "" {
		log.Warn().Msg("alerta_worker: empty producto_id, skipping")
		return nil
	}
	if err := w.store.Guardar(ctx, a); err != nil {
		return err
	}
	log.Info().Str("producto_id", a.ProductoID).Str("cantidad", a.Cantidad.String()).Msg("alerta_worker: alert stored")
	return nil
}
