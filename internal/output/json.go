package output

import (
	"encoding/json"

	"github.com/jaxxstorm/quicken/internal/model"
)

func RenderJSON(report model.RunReport) (string, error) {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
