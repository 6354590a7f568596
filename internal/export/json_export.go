package export

import (
	"encoding/json"
	"time"
)

// JSONExporter renders ExportData as structured JSON.
type JSONExporter struct{}

type jsonOutput struct {
	ExportedAt time.Time  `json:"exported_at"`
	Model      string     `json:"model,omitempty"`
	Memories   []jsonItem `json:"memories"`
}

type jsonItem struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Archived  bool      `json:"archived,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *JSONExporter) Export(data ExportData) (string, error) {
	out := jsonOutput{
		ExportedAt: data.ExportedAt,
		Model:      data.Model,
		Memories:   make([]jsonItem, 0, len(data.Items)),
	}
	for _, item := range data.Items {
		out.Memories = append(out.Memories, jsonItem{
			ID:        item.ID,
			Content:   item.Content,
			Archived:  item.Archived,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
