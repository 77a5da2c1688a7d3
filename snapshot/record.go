package snapshot

import (
	"encoding/json"
	"time"

	"github.com/coderi421/adkit/service"
)

// Record is one stored row. Payload is the JSON form of the entity.
type Record struct {
	Kind      string
	ID        string
	Name      string
	Payload   []byte
	FetchedAt time.Time
}

// Records converts fetched entities of one kind into records stamped with at.
func Records(kind string, items []service.Entity, at time.Time) ([]Record, error) {
	res := make([]Record, 0, len(items))
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		res = append(res, Record{
			Kind:      kind,
			ID:        item.EntityID(),
			Name:      item.EntityName(),
			Payload:   payload,
			FetchedAt: at,
		})
	}
	return res, nil
}
