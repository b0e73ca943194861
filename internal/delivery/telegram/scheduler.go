package telegram

import (
	"context"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/strategy"
	"crypto-signal-backtest/pkg/logger"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleJobs(ctx context.Context, c telebot.Context) error {
	jobs := t.service.SchedulerService.Jobs()
	if len(jobs) == 0 {
		return t.reply(ctx, c, "No jobs configured.")
	}

	histories, err := t.service.TaskExecutor.Histories(ctx, model.GetTaskExecutionHistoryParam{Limit: 20})
	if err != nil {
		t.log.WarnContext(ctx, "Failed to load job histories", logger.ErrorField(err))
	}

	menu := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(jobs)+1)
	for _, job := range jobs {
		rows = append(rows, menu.Row(menu.Data(btnRunJob.Text+" "+job.Name, btnRunJob.Unique, job.Name)))
	}
	rows = append(rows, menu.Row(menu.Data(btnDeleteMessage.Text, btnDeleteMessage.Unique)))
	menu.Inline(rows...)

	return t.reply(ctx, c, formatJobList(jobs, histories), menu)
}

func (t *TelegramBotHandler) handleBtnRunJob(ctx context.Context, c telebot.Context) error {
	name := c.Data()
	if err := t.service.SchedulerService.RunJob(ctx, name); err != nil {
		t.log.WarnContext(ctx, "Failed to run job from telegram", logger.ErrorField(err), logger.StringField("job_name", name))
		return c.Respond(&telebot.CallbackResponse{Text: err.Error()})
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Job " + name + " started"})
}

// formatJobList renders jobs with their most recent execution, histories newest first.
func formatJobList(jobs []strategy.Job, histories []model.TaskExecutionHistory) string {
	last := make(map[string]model.TaskExecutionHistory, len(jobs))
	for _, h := range histories {
		if _, ok := last[h.JobName]; !ok {
			last[h.JobName] = h
		}
	}

	var sb strings.Builder
	sb.WriteString("📋 Configured jobs\n\n")
	for _, job := range jobs {
		schedule := job.Cron
		if schedule == "" {
			schedule = "manual only"
		}
		sb.WriteString(fmt.Sprintf("• %s (%s) %s\n", job.Name, job.Type, schedule))
		if h, ok := last[job.Name]; ok {
			sb.WriteString(fmt.Sprintf("   last: %s %s %s\n", statusIcon(h.Status), strings.ToUpper(string(h.Status)), h.StartedAt.UTC().Format("01/02 15:04")))
		}
	}
	sb.WriteString("\nTap a button below to run a job now.")
	return sb.String()
}

func statusIcon(status model.TaskExecutionStatus) string {
	switch status {
	case model.StatusRunning:
		return "🟡"
	case model.StatusCompleted:
		return "🟢"
	case model.StatusFailed:
		return "🔴"
	case model.StatusTimeout:
		return "🟠"
	default:
		return "⚪"
	}
}
