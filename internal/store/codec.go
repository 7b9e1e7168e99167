package store

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/anotador/internal/models"
)

// encodeScore serializes any score record to its JSON payload. The payload
// carries the ids too, so a row decodes without extra columns.
func encodeScore(rec models.ScoreRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode score %s: %w", rec.RecordID(), err)
	}
	return data, nil
}

// decodeScore deserializes a payload into the concrete score type for the
// game variant.
func decodeScore(gameType models.GameType, data []byte) (models.ScoreRecord, error) {
	var rec models.ScoreRecord
	switch gameType {
	case models.GameDiezMil:
		rec = &models.DiezMilScore{}
	case models.GameGenerala:
		rec = &models.GeneralaScore{}
	case models.GameChinchon:
		rec = &models.ChinchonScore{}
	case models.GameTruco:
		rec = &models.TrucoScore{}
	case models.GameUniversal:
		rec = &models.UniversalScore{}
	default:
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode %s score: %w", gameType, err)
	}
	return rec, nil
}
