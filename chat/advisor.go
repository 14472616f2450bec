// ABOUTME: Business advisor that answers the owner's questions with live insights as context
// ABOUTME: Also handles the analyze_business and execute_automation shortcut actions
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JFernandez0524/leadgen/insights"
)

const (
	ActionAnalyze = "analyze_business"
	ActionExecute = "execute_automation"

	topInsights = 5

	fallbackReply = "I apologize, but I encountered an error analyzing your business data."
	executedReply = "Automated action executed successfully. I've sent reminders and updated the relevant records."
)

var (
	ErrEmptyMessage  = errors.New("message is required")
	ErrUnknownKind   = errors.New("unknown insight kind")
	ErrUnknownAction = errors.New("unknown action")
)

// AvailableActions are the shortcut actions a client may send instead of free text.
var AvailableActions = []string{ActionAnalyze, ActionExecute}

// Profile describes the business the advisor works for.
type Profile struct {
	Name        string
	ServiceType string
}

type Request struct {
	Message string    `json:"message"`
	History []Message `json:"history,omitempty"`
	Action  string    `json:"action,omitempty"`
}

type Response struct {
	Reply              string             `json:"response"`
	Insights           []insights.Insight `json:"insights,omitempty"`
	SuggestsAutomation bool               `json:"suggests_automation"`
	ActionTaken        string             `json:"action_taken,omitempty"`
	Report             *insights.Report   `json:"report,omitempty"`
	AvailableActions   []string           `json:"available_actions,omitempty"`
}

type Advisor struct {
	engine      *insights.Engine
	executor    *insights.Executor
	completer   Completer
	profile     Profile
	maxTokens   int
	temperature float64
	now         func() time.Time
	log         *zap.Logger
}

type Option func(*Advisor)

func WithSampling(maxTokens int, temperature float64) Option {
	return func(a *Advisor) {
		a.maxTokens = maxTokens
		a.temperature = temperature
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Advisor) { a.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(a *Advisor) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAdvisor builds an advisor. completer may be nil, in which case only the
// shortcut actions work.
func NewAdvisor(engine *insights.Engine, executor *insights.Executor, completer Completer, profile Profile, opts ...Option) *Advisor {
	a := &Advisor{
		engine:      engine,
		executor:    executor,
		completer:   completer,
		profile:     profile,
		maxTokens:   800,
		temperature: 0.3,
		now:         time.Now,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond handles one chat turn.
func (a *Advisor) Respond(ctx context.Context, req Request) (*Response, error) {
	switch req.Action {
	case ActionAnalyze:
		return a.analyze(ctx)
	case ActionExecute:
		return a.execute(ctx, req.Message)
	case "":
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, req.Action)
	}

	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if a.completer == nil {
		return nil, ErrNoCompleter
	}

	found, err := a.engine.Analyze(ctx, a.now())
	if err != nil {
		return nil, err
	}

	reply, err := a.completer.Complete(ctx, CompletionRequest{
		System:      SystemPrompt(a.profile, found),
		History:     req.History,
		Message:     req.Message,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		a.log.Error("chat completion failed", zap.Error(err))
		return nil, fmt.Errorf("failed to get advisor reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = fallbackReply
	}

	top := found
	if len(top) > topInsights {
		top = top[:topInsights]
	}
	return &Response{
		Reply:              reply,
		Insights:           top,
		SuggestsAutomation: SuggestsAutomation(reply),
		AvailableActions:   AvailableActions,
	}, nil
}

func (a *Advisor) analyze(ctx context.Context) (*Response, error) {
	found, err := a.engine.Analyze(ctx, a.now())
	if err != nil {
		return nil, err
	}
	return &Response{
		Reply:       insights.Summarize(found),
		Insights:    found,
		ActionTaken: "business_analysis",
	}, nil
}

// execute re-analyzes and runs the automation for the kind named in message.
// Both "overdue_payments" and "insight_id: overdue_payments" are accepted.
func (a *Advisor) execute(ctx context.Context, message string) (*Response, error) {
	raw := message
	if _, after, ok := strings.Cut(message, "insight_id:"); ok {
		raw = after
	}
	kind, err := insights.ParseKind(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, strings.TrimSpace(raw))
	}

	found, err := a.engine.Analyze(ctx, a.now())
	if err != nil {
		return nil, err
	}
	in, ok := insights.Find(found, kind)
	if !ok {
		return &Response{
			Reply:       fmt.Sprintf("There is no %s insight right now, so nothing was changed.", kind),
			ActionTaken: "automation_skipped",
		}, nil
	}

	report := a.executor.Run(ctx, in)
	resp := &Response{Report: &report, ActionTaken: "automation_executed"}
	switch {
	case !report.Executed:
		resp.Reply = fmt.Sprintf("%q needs a manual follow-up; it cannot be automated.", in.Title)
		resp.ActionTaken = "automation_skipped"
	case report.Success():
		resp.Reply = executedReply
	default:
		resp.Reply = fmt.Sprintf("Automation %s finished with %d of %d updates failing. You can run it again to retry.",
			report.RunID, len(report.Failures), report.Attempted)
	}
	return resp, nil
}

// SuggestsAutomation reports whether a reply proposes taking automated action.
func SuggestsAutomation(reply string) bool {
	lower := strings.ToLower(reply)
	for _, cue := range []string{"automat", "send reminder", "follow up", "execute"} {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// SystemPrompt frames the model as the owner's business advisor with the current insights.
func SystemPrompt(p Profile, found []insights.Insight) string {
	name := p.Name
	if name == "" {
		name = "the business"
	}
	service := p.ServiceType
	if service == "" {
		service = "home services"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI business manager and assistant for %s, a %s company. ", name, service)
	b.WriteString("You help the business owner manage operations, track KPIs, and automate administrative tasks.\n\n")
	b.WriteString("CURRENT BUSINESS STATUS:\n")
	b.WriteString(insights.Summarize(found))
	b.WriteString("\n\nDETAILED INSIGHTS:\n")
	b.WriteString(insights.Describe(found))
	b.WriteString(`
YOUR CAPABILITIES:
1. Analyze business performance and identify issues
2. Monitor overdue payments and send automated reminders
3. Track stale leads and schedule follow-ups
4. Identify missed opportunities and revenue trends
5. Manage service scheduling and capacity planning
6. Execute automated actions on behalf of the owner

INSTRUCTIONS:
- Offer to execute automated actions when appropriate
- Provide specific, actionable recommendations backed by the data above
- Always prioritize high-impact items first
- Be concise and speak as a trusted business advisor
`)
	return b.String()
}
