package conversation

import (
	"context"
	"regexp"
	"strings"

	"finbot/internal/charts"
	"finbot/internal/logger"
	"finbot/internal/models"
	"finbot/internal/rates"
	"finbot/internal/services"
)

// amountPattern accepts plain non-negative decimals such as "150" or "150.50".
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Message is one inbound chat text.
type Message struct {
	UserID int64
	Text   string
}

// Attachment is a named binary payload sent alongside a reply.
type Attachment struct {
	Name string
	Data []byte
}

// Reply is one outbound chat message. When Photo or Document is set, Text is
// used as its caption.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
	Photo          *Attachment
	Document       *Attachment
}

// RateFetcher looks up exchange rates.
type RateFetcher interface {
	FetchRates(ctx context.Context, base string, symbols []string) (*rates.Rates, error)
}

// Dependencies are the collaborators an Engine drives.
type Dependencies struct {
	Users        services.UserServicer
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Analytics    services.AnalyticsServicer
	Rates        RateFetcher
	Charts       charts.Renderer
	Sessions     SessionStore
}

// Engine is the dialog state machine. Messages of one user are handled one
// at a time; different users proceed concurrently.
type Engine struct {
	users        services.UserServicer
	categories   services.CategoryServicer
	transactions services.TransactionServicer
	budgets      services.BudgetServicer
	analytics    services.AnalyticsServicer
	rates        RateFetcher
	charts       charts.Renderer
	sessions     SessionStore
	locks        *userLocks
}

// NewEngine creates an Engine. A nil session store gets an in-memory one
// without expiry.
func NewEngine(deps Dependencies) *Engine {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewMemoryStore(0)
	}
	return &Engine{
		users:        deps.Users,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		analytics:    deps.Analytics,
		rates:        deps.Rates,
		charts:       deps.Charts,
		sessions:     sessions,
		locks:        newUserLocks(),
	}
}

// turn carries one message through the engine.
type turn struct {
	ctx     context.Context
	userID  int64
	user    *models.User
	text    string
	session *Session
}

type handlerFunc func(e *Engine, t *turn) ([]Reply, error)

// entryPoints start a new interaction from any state, discarding the
// current session.
var entryPoints = map[string]handlerFunc{
	cmdStart:      (*Engine).start,
	btnAddExpense: (*Engine).startAmount,
	btnAddIncome:  (*Engine).startAmount,
	btnBalance:    (*Engine).showBalance,
	btnStats:      (*Engine).startStats,
	btnRates:      (*Engine).showRates,
	btnExportCSV:  (*Engine).exportCSV,
	btnExportXLSX: (*Engine).exportXLSX,
	btnDiagrams:   (*Engine).showDiagrams,
	btnSettings:   (*Engine).startSettings,
}

// steps handle free input while a session is in the given state.
var steps = map[State]handlerFunc{
	StateAwaitingAmount:       (*Engine).onAmount,
	StateAwaitingCategory:     (*Engine).onCategory,
	StateAwaitingStatsChoice:  (*Engine).onStatsChoice,
	StateAwaitingSettings:     (*Engine).onSettingsChoice,
	StateAwaitingCurrency:     (*Engine).onCurrency,
	StateAwaitingCategoryMenu: (*Engine).onCategoryMenu,
	StateAwaitingNewCatName:   (*Engine).onNewCategoryName,
	StateAwaitingNewCatType:   (*Engine).onNewCategoryType,
	StateAwaitingBudgetCat:    (*Engine).onBudgetCategory,
	StateAwaitingBudgetAmount: (*Engine).onBudgetAmount,
	StateAwaitingDeleteSelect: (*Engine).onDeleteSelect,
	StateAwaitingDeleteConf:   (*Engine).onDeleteConfirm,
}

func isCancel(text string) bool {
	return text == btnCancel || text == btnBack || text == cmdCancel
}

// Handle processes one inbound message and returns the replies to send.
// A non-nil error means a store failure: the session has been dropped and
// the replies carry a generic failure notice.
func (e *Engine) Handle(ctx context.Context, msg Message) ([]Reply, error) {
	unlock := e.locks.lock(msg.UserID)
	defer unlock()

	t := &turn{ctx: ctx, userID: msg.UserID, text: strings.TrimSpace(msg.Text)}

	user, err := e.users.GetOrCreateUser(msg.UserID)
	if err != nil {
		return e.fail(t, err)
	}
	t.user = user

	if isCancel(t.text) {
		e.sessions.Clear(msg.UserID)
		text := msgCancelled
		if t.text == cmdCancel {
			text = msgOpCancelled
		}
		return []Reply{{Text: text, Keyboard: mainMenu}}, nil
	}

	if entry, ok := entryPoints[t.text]; ok {
		e.sessions.Clear(msg.UserID)
		return e.run(t, entry)
	}

	session, ok := e.sessions.Get(msg.UserID)
	if !ok {
		return []Reply{{Text: msgUnknown, Keyboard: mainMenu}}, nil
	}
	t.session = session

	step, ok := steps[session.State]
	if !ok {
		e.sessions.Clear(msg.UserID)
		return []Reply{{Text: msgUnknown, Keyboard: mainMenu}}, nil
	}
	return e.run(t, step)
}

func (e *Engine) run(t *turn, h handlerFunc) ([]Reply, error) {
	replies, err := h(e, t)
	if err != nil {
		return e.fail(t, err)
	}
	return replies, nil
}

func (e *Engine) fail(t *turn, err error) ([]Reply, error) {
	e.sessions.Clear(t.userID)
	state := StateIdle
	if t.session != nil {
		state = t.session.State
	}
	logger.Get().Errorw("conversation step failed",
		"user", t.userID,
		"state", string(state),
		"error", err,
	)
	return []Reply{{Text: msgFailure, Keyboard: mainMenu}}, err
}

// advance moves the session to state and stores it.
func (e *Engine) advance(t *turn, state State) {
	if t.session == nil {
		t.session = &Session{}
	}
	t.session.State = state
	e.sessions.Set(t.userID, t.session)
}

// stay keeps the session in its current state and refreshes its idle timer.
func (e *Engine) stay(t *turn) {
	e.sessions.Set(t.userID, t.session)
}

// end releases the session.
func (e *Engine) end(t *turn) {
	e.sessions.Clear(t.userID)
	t.session = nil
}

func menuReply(s string) []Reply {
	return []Reply{{Text: s, Keyboard: mainMenu}}
}
