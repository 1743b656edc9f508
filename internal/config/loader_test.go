package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/triage/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogPath, convey.ShouldEqual, "feedback_log.csv")
				convey.So(cfg.Jira.ProjectKey, convey.ShouldEqual, "SCRUM")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("TRIAGE_ADDR", ":8080")
			t.Setenv("TRIAGE_LOG_PATH", "/var/lib/triage/log.csv")
			t.Setenv("TRIAGE_LOG_LEVEL", "debug")
			t.Setenv("TRIAGE_CATEGORIES", "Billing,Shipping")
			t.Setenv("TRIAGE_JIRA__PROJECT_KEY", "OPS")
			t.Setenv("TRIAGE_CLASSIFIER__TIMEOUT_MS", "1500")
			t.Setenv("TRIAGE_SLACK__WEBHOOK_URL", "https://hooks.slack.test/x")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogPath, convey.ShouldEqual, "/var/lib/triage/log.csv")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Categories, convey.ShouldResemble, []string{"Billing", "Shipping"})
				convey.So(cfg.Jira.ProjectKey, convey.ShouldEqual, "OPS")
				convey.So(cfg.Jira.IssueType, convey.ShouldEqual, "Task")
				convey.So(cfg.Classifier.TimeoutMS, convey.ShouldEqual, 1500)
				convey.So(cfg.Slack.WebhookURL, convey.ShouldEqual, "https://hooks.slack.test/x")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
# comments are fine
addr: ":9090"  # inline too
log_path: "data/feedback.csv"
categories: [Application, Database]
classifier:
  provider: huggingface
  token: hf_x
  sentiment_model: custom/sentiment
jira:
  server_url: https://example.atlassian.net
  email: bot@example.com
  api_token: secret
`)
			t.Setenv("TRIAGE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep defaults for the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogPath, convey.ShouldEqual, "data/feedback.csv")
				convey.So(cfg.Categories, convey.ShouldResemble, []string{"Application", "Database"})
				convey.So(cfg.Classifier.Provider, convey.ShouldEqual, config.ProviderHuggingFace)
				convey.So(cfg.Classifier.SentimentModel, convey.ShouldEqual, "custom/sentiment")
				convey.So(cfg.Classifier.TimeoutMS, convey.ShouldEqual, 30_000)
				convey.So(cfg.Jira.ServerURL, convey.ShouldEqual, "https://example.atlassian.net")
				convey.So(cfg.Jira.ProjectKey, convey.ShouldEqual, "SCRUM")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
sentinel: quit
jira:
  project_key: FILE
`)
			t.Setenv("TRIAGE_CONFIG", tmpFile)
			t.Setenv("TRIAGE_ADDR", ":8080")
			t.Setenv("TRIAGE_JIRA__PROJECT_KEY", "ENV")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")          // env
				convey.So(cfg.Sentinel, convey.ShouldEqual, "quit")       // file
				convey.So(cfg.Jira.ProjectKey, convey.ShouldEqual, "ENV") // env
			})
		})

		convey.Convey("When loading from an explicit path", func() {
			tmpFile := createTempConfigFile(t, `addr: ":7070"`)

			cfg, err := config.LoadFrom(ctx, tmpFile)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("TRIAGE_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("TRIAGE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("TRIAGE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("TRIAGE_SLACK__TIMEOUT_MS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triage-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
