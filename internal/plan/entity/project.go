package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONBlob stores arbitrary JSON in a jsonb column.
type JSONBlob json.RawMessage

func (j JSONBlob) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

func (j *JSONBlob) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONBlob: %v", value)
	}
	*j = append((*j)[0:0], bytes...)
	return nil
}

func (j JSONBlob) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONBlob) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// StructuralModel is the full serialized configuration of one plan: the static
// model plus its event log. This is both the persistence blob and the request
// body sent to the optimizer.
type StructuralModel struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	HistoryUpdatedAt *time.Time      `json:"historyUpdatedAt,omitempty"`
	AssemblyTypes    []AssemblyType  `json:"assemblyTypes"`
	ComponentTypes   []ComponentType `json:"componentTypes"`
	PartModels       []PartModel     `json:"partModels"`
	Nodes            []*TreeNode     `json:"nodes"`
	Timeline         *Timeline       `json:"timeline,omitempty"`
}

// Project is the persisted row. The structural model is stored opaquely as a
// JSONB blob; the service never queries inside it.
type Project struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	Name             string     `json:"name" gorm:"size:256;not null"`
	HistoryUpdatedAt *time.Time `json:"history_updated_at"`
	Model            JSONBlob   `json:"model" gorm:"type:jsonb"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
