// Package console implements the operator's multi-screen admin panel as
// an explicit state machine: screen navigation, pagination over the live
// query log, subscription bulk actions and the two-step grant wizard.
package console

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"olx-profit-bot/storage"
	"olx-profit-bot/utils"
)

// Mode is the console screen currently shown to the operator.
type Mode int

const (
	ModeMain Mode = iota
	ModeUserList
	ModeUserMessages
	ModeSubsMenu
)

// WizardStep tracks the grant wizard, orthogonal to the screen state.
type WizardStep int

const (
	WizardNone WizardStep = iota
	WizardAwaitingUsername
	WizardAwaitingDays
)

// BulkGrantDays is the duration handed out by the "activate all" action.
const BulkGrantDays = 30

// Callback payloads, stable across renders.
const (
	cbUserLogs   = "admin_user_logs"
	cbGiveSub    = "admin_give_sub"
	cbSubs       = "admin_subs"
	cbClose      = "admin_close"
	cbBack       = "admin_back"
	cbUsersPrev  = "users_prev"
	cbUsersNext  = "users_next"
	cbMsgsPrev   = "messages_prev"
	cbMsgsNext   = "messages_next"
	cbSubOnAll   = "sub_on_all"
	cbSubOffAll  = "sub_off_all"
	cbUserSelect = "user_select_"
)

// State is one operator's console navigation state. Created on console
// entry, mutated by every navigation event, never persisted.
type State struct {
	Mode           Mode
	Page           int
	SelectedUser   int64
	Wizard         WizardStep
	TargetUserID   int64
	TargetUsername string
}

// Button is one inline key of a rendered screen. URL buttons open a
// link; data buttons feed back into HandleCallback.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Screen is one outbound console rendering. Edit asks the transport to
// redraw the existing console message in place; Delete removes it.
type Screen struct {
	Text     string
	Keyboard [][]Button
	Edit     bool
	Delete   bool
}

// Navigator owns the per-operator console states. Every exported method
// is gated on the designated operator identity and safe for concurrent
// use; renders always recompute their slice from the live stores.
type Navigator struct {
	mu       sync.Mutex
	admin    string
	pageSize int
	states   map[int64]*State
	log      storage.QueryReader
	subs     storage.SubscriptionManager
	logger   *utils.Logger
}

// New creates a Navigator bound to the designated operator username.
func New(adminUsername string, pageSize int, log storage.QueryReader, subs storage.SubscriptionManager, logger *utils.Logger) *Navigator {
	if pageSize < 1 {
		pageSize = 5
	}
	return &Navigator{
		admin:    adminUsername,
		pageSize: pageSize,
		states:   make(map[int64]*State),
		log:      log,
		subs:     subs,
		logger:   logger,
	}
}

func (n *Navigator) isOperator(username string) bool {
	return username != "" && username == n.admin
}

// Open starts a console session and renders the main menu. A false
// result is an access denial; no state is touched.
func (n *Navigator) Open(userID int64, username string) (Screen, bool) {
	if !n.isOperator(username) {
		n.logger.Warn("[console] denied panel access for @%s", username)
		return Screen{}, false
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.states[userID] = &State{}
	return n.renderMain(), true
}

// HandleCallback applies one console button press and returns the screen
// to redraw. A false result means denial or an unrecognized payload; in
// both cases no state changes.
func (n *Navigator) HandleCallback(userID int64, username, data string) (Screen, bool) {
	if !n.isOperator(username) {
		n.logger.Warn("[console] denied callback %q from @%s", data, username)
		return Screen{}, false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.states[userID]
	if !ok {
		st = &State{}
		n.states[userID] = st
	}

	switch {
	case data == cbClose:
		delete(n.states, userID)
		return Screen{Delete: true}, true

	case data == cbBack:
		st.Mode = ModeMain
		st.Page = 0
		return edited(n.renderMain()), true

	case data == cbUserLogs:
		st.Mode = ModeUserList
		st.Page = 0
		return n.renderUserList(st), true

	case data == cbGiveSub:
		st.Wizard = WizardAwaitingUsername
		st.TargetUserID = 0
		st.TargetUsername = ""
		return Screen{
			Text: "🎫 <b>Выдача подписки</b>\n\n👤 Напишите username пользователя (без @):",
			Edit: true,
		}, true

	case data == cbSubs:
		st.Mode = ModeSubsMenu
		return n.renderSubsMenu(), true

	case strings.HasPrefix(data, cbUserSelect):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, cbUserSelect), 10, 64)
		if err != nil {
			return Screen{}, false
		}
		st.SelectedUser = id
		st.Mode = ModeUserMessages
		st.Page = 0
		return n.renderUserMessages(st), true

	case data == cbUsersPrev || data == cbUsersNext:
		st.Mode = ModeUserList
		st.Page = stepPage(st.Page, len(n.log.Users()), n.pageSize, data == cbUsersNext)
		return n.renderUserList(st), true

	case data == cbMsgsPrev || data == cbMsgsNext:
		st.Page = stepPage(st.Page, len(n.log.ByUser(st.SelectedUser)), n.pageSize, data == cbMsgsNext)
		return n.renderUserMessages(st), true

	case data == cbSubOnAll:
		users := n.log.Users()
		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.UserID)
		}
		if err := n.subs.ActivateAll(ids, BulkGrantDays); err != nil {
			n.logger.Error("[console] bulk activation: %v", err)
		}
		return Screen{
			Text: fmt.Sprintf("✅ Всем пользователям активирована подписка на %d дней!", BulkGrantDays),
			Edit: true,
		}, true

	case data == cbSubOffAll:
		n.subs.DeactivateAll()
		return Screen{Text: "❌ Все подписки деактивированы!", Edit: true}, true
	}

	return Screen{}, false
}

// HandleText consumes one operator text message while the grant wizard
// is pending. A false result means the text is not console input and
// should flow on to the search pipeline.
func (n *Navigator) HandleText(userID int64, username, text string) (string, bool) {
	if !n.isOperator(username) {
		return "", false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	st, ok := n.states[userID]
	if !ok || st.Wizard == WizardNone {
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "/cancel" {
		n.resetWizard(st)
		return "❌ Действие отменено", true
	}

	switch st.Wizard {
	case WizardAwaitingUsername:
		uname := strings.ToLower(strings.TrimPrefix(text, "@"))
		id, found := n.log.ResolveUsername(uname)
		if !found {
			return fmt.Sprintf("❌ Пользователь @%s не найден в базе.\n\n"+
				"👤 Попробуйте другой username или отмените действие командой /cancel", uname), true
		}
		st.TargetUserID = id
		st.TargetUsername = uname
		st.Wizard = WizardAwaitingDays
		return fmt.Sprintf("✅ Пользователь @%s найден!\n\n"+
			"📅 Теперь напишите количество дней для подписки:", uname), true

	case WizardAwaitingDays:
		days, err := strconv.Atoi(text)
		if err != nil {
			return "❌ Введите корректное число дней", true
		}
		sub, err := n.subs.Grant(st.TargetUserID, days)
		if err != nil {
			return "❌ Количество дней должно быть больше 0", true
		}
		uname := st.TargetUsername
		n.resetWizard(st)
		n.logger.Info("[console] subscription granted to @%s for %d days", uname, days)
		return fmt.Sprintf("✅ <b>Подписка активирована!</b>\n\n"+
			"👤 Пользователь: @%s\n⏰ Срок: %d дней\n📅 Активна до: %s",
			uname, days, sub.Until.Format("2006-01-02 15:04")), true
	}

	return "", false
}

func (n *Navigator) resetWizard(st *State) {
	st.Wizard = WizardNone
	st.TargetUserID = 0
	st.TargetUsername = ""
}

// ── Renders ──────────────────────────────────────────────────────────

func (n *Navigator) renderMain() Screen {
	text := fmt.Sprintf("🔐 <b>Админ-панель</b>\n\n"+
		"📊 Статистика:\n"+
		"• Всего запросов: %d\n"+
		"• Уникальных пользователей: %d\n"+
		"• Активных подписок: %d\n\n"+
		"🛠 Выберите действие:",
		n.log.Len(), len(n.log.Users()), n.subs.ActiveCount())

	return Screen{
		Text: text,
		Keyboard: [][]Button{
			{{Label: "📋 Логи пользователей", Data: cbUserLogs}},
			{{Label: "🎫 Выдать подписку", Data: cbGiveSub}},
			{{Label: "🎫 Управление подписками", Data: cbSubs}},
			{{Label: "❌ Закрыть", Data: cbClose}},
		},
	}
}

func (n *Navigator) renderUserList(st *State) Screen {
	users := n.log.Users()
	pages := pageCount(len(users), n.pageSize)
	st.Page = clampPage(st.Page, pages)

	start := st.Page * n.pageSize
	end := start + n.pageSize
	if end > len(users) {
		end = len(users)
	}

	var keyboard [][]Button
	for _, u := range users[start:end] {
		status := "❌"
		if n.subs.IsActive(u.UserID) {
			status = "✅"
		}
		keyboard = append(keyboard, []Button{{
			Label: fmt.Sprintf("%s %s (@%s) - %d сообщений", status, u.Name, u.Username, u.QueryCount),
			Data:  cbUserSelect + strconv.FormatInt(u.UserID, 10),
		}})
	}

	if nav := navRow(st.Page, pages, cbUsersPrev, cbUsersNext); nav != nil {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 Назад", Data: cbBack}})

	return Screen{
		Text:     fmt.Sprintf("👥 <b>Выберите пользователя</b> (страница %d/%d)", st.Page+1, pages),
		Keyboard: keyboard,
		Edit:     true,
	}
}

func (n *Navigator) renderUserMessages(st *State) Screen {
	msgs := n.log.ByUser(st.SelectedUser)
	if len(msgs) == 0 {
		return Screen{
			Text:     "У этого пользователя нет сообщений",
			Keyboard: [][]Button{{{Label: "🔙 К списку пользователей", Data: cbUserLogs}}},
			Edit:     true,
		}
	}

	pages := pageCount(len(msgs), n.pageSize)
	st.Page = clampPage(st.Page, pages)

	start := st.Page * n.pageSize
	end := start + n.pageSize
	if end > len(msgs) {
		end = len(msgs)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💬 <b>Сообщения пользователя</b>\n👤 %s (@%s)\n📄 Страница %d/%d\n\n",
		html.EscapeString(msgs[0].Name), html.EscapeString(msgs[0].Username), st.Page+1, pages)
	for i, m := range msgs[start:end] {
		fmt.Fprintf(&b, "<b>%d. %s</b>\n📝 %s\n\n",
			i+1, m.Time.Format("2006-01-02 15:04:05"), html.EscapeString(truncateRunes(m.Text, 150)))
	}

	var keyboard [][]Button
	if nav := navRow(st.Page, pages, cbMsgsPrev, cbMsgsNext); nav != nil {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, []Button{{Label: "🔙 К списку пользователей", Data: cbUserLogs}})

	return Screen{Text: b.String(), Keyboard: keyboard, Edit: true}
}

func (n *Navigator) renderSubsMenu() Screen {
	return Screen{
		Text: "🎫 <b>Управление подписками</b>\n\nВыберите действие:",
		Keyboard: [][]Button{
			{{Label: fmt.Sprintf("✅ Активировать всем (%d дней)", BulkGrantDays), Data: cbSubOnAll}},
			{{Label: "❌ Деактивировать всем", Data: cbSubOffAll}},
			{{Label: "🔙 Назад", Data: cbBack}},
		},
		Edit: true,
	}
}

// ── Pagination helpers ───────────────────────────────────────────────

func pageCount(total, size int) int {
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// clampPage keeps the page inside [0, pages-1]; the backing data may
// have shrunk between renders.
func clampPage(page, pages int) int {
	if page >= pages {
		page = pages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}

// stepPage moves one page forward or back; stepping past either edge is
// a no-op.
func stepPage(page, total, size int, next bool) int {
	pages := pageCount(total, size)
	page = clampPage(page, pages)
	if next {
		if page < pages-1 {
			page++
		}
	} else if page > 0 {
		page--
	}
	return page
}

func navRow(page, pages int, prevData, nextData string) []Button {
	var row []Button
	if page > 0 {
		row = append(row, Button{Label: "⬅️", Data: prevData})
	}
	if page < pages-1 {
		row = append(row, Button{Label: "➡️", Data: nextData})
	}
	return row
}

func edited(s Screen) Screen {
	s.Edit = true
	return s
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
