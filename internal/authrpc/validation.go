package authrpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Validation is the decoded ValidateToken response.
type Validation struct {
	Valid  bool               `json:"valid"`
	User   *models.PublicUser `json:"user,omitempty"`
	Reason string             `json:"reason,omitempty"`
}

// EncodeValidation renders v as a protobuf Struct.
func EncodeValidation(v *Validation) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal validation: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal validation: %w", err)
	}
	return structpb.NewStruct(m)
}

// DecodeValidation is the inverse of EncodeValidation.
func DecodeValidation(s *structpb.Struct) (*Validation, error) {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	var v Validation
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode validation: %w", err)
	}
	return &v, nil
}
