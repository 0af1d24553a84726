package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyJSONHandler(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	options := func(prettyPrint bool) *PrettyJSONHandlerOptions {
		return &PrettyJSONHandlerOptions{
			HandlerOptions: slog.HandlerOptions{
				ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Time(a.Key, fixedTime)
					}
					return a
				},
			},
			PrettyPrint: prettyPrint,
		}
	}

	for name, prettyPrint := range map[string]bool{"PrettyPrintEnabled": true, "PrettyPrintDisabled": false} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewPrettyJSONHandler(&buf, options(prettyPrint)))

			logger.Info("test message", "cluster", "cluster1")

			got := buf.String()
			assert.Equal(t, prettyPrint, bytes.Contains(buf.Bytes(), []byte("\n  ")))
			assert.True(t, got[len(got)-1] == '\n', "want output to end with a newline")
			var gotData map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &gotData))
			assert.Equal(t, map[string]any{
				"level":   "INFO",
				"msg":     "test message",
				"time":    "2024-01-01T00:00:00Z",
				"cluster": "cluster1",
			}, gotData)
		})
	}

	t.Run("KeepsAttributesAndGroups", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyJSONHandler(&buf, options(true))).
			With("component", "catalog").
			WithGroup("service")

		logger.Info("loaded", "name", "HDFS{2.7.0}")

		var gotData map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &gotData))
		assert.Equal(t, "catalog", gotData["component"])
		assert.Equal(t, map[string]any{"name": "HDFS{2.7.0}"}, gotData["service"])
	})

	t.Run("OneDocumentPerRecord", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyJSONHandler(&buf, options(true)))

		logger.Info("first")
		logger.With("a", 1).Info("second")

		decoder := json.NewDecoder(&buf)
		var messages []string
		for decoder.More() {
			var record map[string]any
			require.NoError(t, decoder.Decode(&record))
			messages = append(messages, record["msg"].(string))
		}
		assert.Equal(t, []string{"first", "second"}, messages)
	})
}
