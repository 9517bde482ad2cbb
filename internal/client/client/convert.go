package client

import (
	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
)

func toAPIRecord(r models.Record) api.Record {
	var items []api.Item
	if r.Items != nil {
		items = make([]api.Item, len(r.Items))
		for i, it := range r.Items {
			items[i] = api.Item{Tag: it.Tag, Text: it.Text, Done: it.Done}
		}
	}
	return api.Record{
		ID:         r.ID,
		NaturalKey: r.NaturalKey,
		Kind:       string(r.Kind),
		Title:      r.Title,
		Body:       r.Body,
		Items:      items,
		Flags:      r.Flags,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func fromAPIRecord(r api.Record) models.Record {
	var items []models.Item
	if r.Items != nil {
		items = make([]models.Item, len(r.Items))
		for i, it := range r.Items {
			items[i] = models.Item{Tag: it.Tag, Text: it.Text, Done: it.Done}
		}
	}
	return models.Record{
		ID:         r.ID,
		NaturalKey: r.NaturalKey,
		Kind:       models.Kind(r.Kind),
		Title:      r.Title,
		Body:       r.Body,
		Items:      items,
		Flags:      r.Flags,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func fromAPIRecords(in []api.Record) []models.Record {
	out := make([]models.Record, 0, len(in))
	for _, r := range in {
		out = append(out, fromAPIRecord(r))
	}
	return out
}
