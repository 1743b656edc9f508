package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/triage/internal/adapters/classifier/huggingface"
	"github.com/okian/triage/internal/adapters/classifier/lexicon"
	"github.com/okian/triage/internal/adapters/jira"
	repository "github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/adapters/slack"
	service "github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/config"
	"github.com/okian/triage/internal/domain/escalation"
	"github.com/okian/triage/internal/domain/model"
	"github.com/okian/triage/internal/domain/severity"
	"github.com/okian/triage/pkg/logger"
)

// pipeline is the processing service together with the log it appends to.
type pipeline struct {
	svc   *service.Service
	store *repository.CSVStore
}

// buildPipeline wires classifiers, tracker, notifier and the feedback log
// from cfg.
func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*pipeline, error) {
	sentiment, topics := buildClassifiers(cfg)
	tracker, err := buildTracker(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	notifier := buildNotifier(cfg, log)

	policy := escalation.New(escalation.Config{
		ProjectKey: cfg.Jira.ProjectKey,
		IssueType:  cfg.Jira.IssueType,
		Categories: cfg.Categories,
	}, topics, tracker, notifier, escalation.WithLogger(log.Named("escalation")))

	store := repository.NewCSVStore(cfg.LogPath)
	engine := severity.NewEngine(severity.NewSentimentScorer(sentiment))
	svc := service.New(engine, policy, store, service.WithLogger(log.Named("service")))
	return &pipeline{svc: svc, store: store}, nil
}

func buildClassifiers(cfg *config.Config) (severity.SentimentClassifier, escalation.TopicClassifier) {
	if cfg.Classifier.Provider == config.ProviderHuggingFace {
		client := buildInferenceClient(cfg)
		return huggingface.NewSentimentClassifier(client, cfg.Classifier.SentimentModel),
			huggingface.NewTopicClassifier(client, cfg.Classifier.TopicModel)
	}
	clf := lexicon.New()
	return clf, clf.Topics()
}

func buildInferenceClient(cfg *config.Config) *huggingface.Client {
	opts := []huggingface.Option{
		huggingface.WithToken(cfg.Classifier.Token),
		huggingface.WithTimeout(config.Millis(cfg.Classifier.TimeoutMS)),
	}
	if cfg.Classifier.BaseURL != "" {
		opts = append(opts, huggingface.WithBaseURL(cfg.Classifier.BaseURL))
	}
	return huggingface.New(opts...)
}

// buildTracker returns the Jira client, or a dry-run tracker when no server
// is configured.
func buildTracker(ctx context.Context, cfg *config.Config, log logger.Logger) (escalation.Tracker, error) {
	if cfg.Jira.ServerURL == "" {
		log.Info(ctx, "no jira.server_url; tickets are dry-run")
		return jira.NewDryRun("", log.Named("jira")), nil
	}
	client, err := jira.New(cfg.Jira.ServerURL, cfg.Jira.Email, cfg.Jira.APIToken,
		jira.WithTimeout(config.Millis(cfg.Jira.TimeoutMS)))
	if err != nil {
		return nil, fmt.Errorf("jira: %w", err)
	}
	return client, nil
}

// buildNotifier returns the Slack webhook, or a log-only notifier when no
// webhook is configured.
func buildNotifier(cfg *config.Config, log logger.Logger) escalation.Notifier {
	if cfg.Slack.WebhookURL == "" {
		return slack.NewLogOnly(log.Named("slack"))
	}
	return slack.New(cfg.Slack.WebhookURL,
		slack.WithLogger(log.Named("slack")),
		slack.WithTimeout(config.Millis(cfg.Slack.TimeoutMS)),
	)
}

// printResult writes the per-event summary shown after each submission.
func printResult(w io.Writer, res service.Result) {
	ev := res.Event
	fmt.Fprintf(w, "\n-> Sentiment: %s (Severity Score: %.2f)\n", ev.Sentiment, ev.SeverityScore)
	fmt.Fprintf(w, "-> Category: %s (%.2f)\n", ev.Category, ev.CategoryConfidence)
	switch {
	case ev.HasTicket():
		fmt.Fprintf(w, "Ticket created: %s\n", ev.TicketID)
		if !res.Notified {
			fmt.Fprintln(w, "Chat alert failed.")
		}
	case res.TicketError != "":
		fmt.Fprintf(w, "Ticket creation failed: %s\n", res.TicketError)
	case ev.Sentiment != model.SentimentNegative:
		fmt.Fprintln(w, "No ticket created (sentiment not negative).")
	}
	fmt.Fprintln(w, "Logged to CSV.")
	fmt.Fprintln(w)
}
