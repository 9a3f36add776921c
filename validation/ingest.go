package validation

import (
	"devicelog/models"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// IngestBatch checks the parts of an ingest payload that struct binding
// cannot express. Binding has already enforced required fields and the
// dataType enum.
func IngestBatch(reqs []models.IngestRequest) error {
	if len(reqs) == 0 {
		return models.NewValidationError("at least one log entry is required")
	}

	for i, req := range reqs {
		if strings.TrimSpace(req.DeviceUUID) == "" {
			return models.NewValidationError("entry %d: device_uuid must not be blank", i)
		}
		if !req.DataType.Valid() {
			return models.NewValidationError("entry %d: invalid dataType", i)
		}
		if n := utf8.RuneCountInString(req.Key); n == 0 || n > 255 {
			return models.NewValidationError("entry %d: key must be 1-255 characters", i)
		}
		if req.SessionUUID != nil && strings.TrimSpace(*req.SessionUUID) == "" {
			return models.NewValidationError("entry %d: session_uuid must not be blank", i)
		}
		if len(req.Value) > 0 && !json.Valid(req.Value) {
			return models.NewValidationError("entry %d: value is not valid JSON", i)
		}
	}

	return nil
}

// ColumnMapping rejects blank keys. Labels may repeat.
func ColumnMapping(mapping map[string]string) error {
	for key := range mapping {
		if strings.TrimSpace(key) == "" {
			return models.NewValidationError("column mapping keys must not be blank")
		}
	}
	return nil
}
