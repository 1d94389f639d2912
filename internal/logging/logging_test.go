package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mohammadpnp/crm-import/internal/logging"
	"github.com/sirupsen/logrus"
)

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.New(&buf, "debug", "json")
	log.WithField("job_id", "job-1").Debug("claimed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "claimed" || entry["job_id"] != "job-1" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]logrus.Level{
		"silent":  logrus.PanicLevel,
		"ERROR":   logrus.ErrorLevel,
		"warn":    logrus.WarnLevel,
		"debug":   logrus.DebugLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
