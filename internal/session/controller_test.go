package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	spanish = tutor.Language{Code: "es", Name: "Spanish"}
	german  = tutor.Language{Code: "de", Name: "German"}
	hotel   = tutor.Mission{ID: "hotel", Title: "Checking into a Hotel", Description: "Check in."}
	grocery = tutor.Mission{ID: "grocery", Title: "Grocery Shopping", Description: "Buy food."}
)

// fakeSender replays scripted outcomes in order and records requests.
type fakeSender struct {
	mu       sync.Mutex
	requests []api.Request
	replies  []fakeReply
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeSender) Send(_ context.Context, req api.Request) (*api.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return &api.Payload{Text: ""}, nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &api.Payload{Text: r.text}, nil
}

func (f *fakeSender) queue(replies ...fakeReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var ignoreIDs = cmpopts.IgnoreFields(tutor.Message{}, "ID")

func diffMessages(t *testing.T, want, got []tutor.Message) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignoreIDs, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

// startSession selects lang and mode and applies the opening call.
func startSession(t *testing.T, c *Controller, lang tutor.Language, mode tutor.Mode) {
	t.Helper()
	if _, err := c.SelectLanguage(lang); err != nil {
		t.Fatalf("SelectLanguage: %v", err)
	}
	call, err := c.SelectMode(mode)
	if err != nil {
		t.Fatalf("SelectMode: %v", err)
	}
	if call == nil {
		t.Fatal("expected opening call")
	}
	if !c.Do(context.Background(), call) {
		t.Fatal("opening call result was discarded")
	}
}

func TestSelection_PhasesAndViews(t *testing.T) {
	c := New(&fakeSender{})

	if c.Phase() != PhaseUnselected || c.View() != ViewLanguagePicker {
		t.Fatalf("initial phase=%v view=%v", c.Phase(), c.View())
	}

	if _, err := c.SelectMode(tutor.ModeImmersion); !errors.Is(err, ErrLanguageRequired) {
		t.Errorf("SelectMode without language: err = %v, want ErrLanguageRequired", err)
	}

	call, err := c.SelectLanguage(spanish)
	if err != nil || call != nil {
		t.Fatalf("SelectLanguage: call=%v err=%v", call, err)
	}
	if c.Phase() != PhaseLanguageChosen || c.View() != ViewModePicker {
		t.Errorf("after language phase=%v view=%v", c.Phase(), c.View())
	}

	if _, err := c.SelectMission(hotel); !errors.Is(err, ErrMissionNotApplicable) {
		t.Errorf("SelectMission before missions mode: err = %v", err)
	}

	call, err = c.SelectMode(tutor.ModeMissions)
	if err != nil || call != nil {
		t.Fatalf("SelectMode(missions): call=%v err=%v", call, err)
	}
	if c.Phase() != PhaseModeChosen || c.View() != ViewMissionPicker {
		t.Errorf("after missions mode phase=%v view=%v", c.Phase(), c.View())
	}

	call, err = c.SelectMission(hotel)
	if err != nil || call == nil {
		t.Fatalf("SelectMission: call=%v err=%v", call, err)
	}
	if c.Phase() != PhaseInitializing || !c.Loading() || c.View() != ViewConversation {
		t.Errorf("after mission phase=%v loading=%v view=%v", c.Phase(), c.Loading(), c.View())
	}

	if _, err := c.SelectMode(tutor.Mode("KARAOKE")); err == nil {
		t.Error("SelectMode accepted an unknown mode")
	}
	if _, err := c.SelectLanguage(tutor.Language{}); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("SelectLanguage(zero): err = %v", err)
	}
}

func TestInit_SpanishImmersionEndToEnd(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(api.Payload{Text: `{"response":"¡Hola! ¿Cómo estás?","correction":null}`})
	}))
	defer server.Close()

	hc := &http.Client{}
	defer hc.CloseIdleConnections()

	var snaps []Snapshot
	c := New(api.NewClient(server.URL, api.WithHTTPClient(hc)), WithListener(func(s Snapshot) { snaps = append(snaps, s) }))
	startSession(t, c, spanish, tutor.ModeImmersion)

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	want := map[string]any{
		"newMessage": "Start conversation",
		"history":    []any{},
		"language":   map[string]any{"code": "es", "name": "Spanish"},
		"mode":       "IMMERSION",
		"mission":    nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "¡Hola! ¿Cómo estás?"}}, c.Messages())
	if c.Loading() || c.Err() != "" || c.Phase() != PhaseActive {
		t.Errorf("after init loading=%v err=%q phase=%v", c.Loading(), c.Err(), c.Phase())
	}

	// Loading is visible between issuing the call and applying it.
	sawLoading := false
	for _, s := range snaps {
		if s.Phase == PhaseInitializing && s.Loading {
			sawLoading = true
		}
	}
	if !sawLoading {
		t.Error("listener never observed the initializing snapshot")
	}
	if last := snaps[len(snaps)-1]; last.Loading || len(last.Messages) != 1 {
		t.Errorf("last snapshot = %+v", last)
	}
}

func TestInit_IdempotentForSameSelection(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "Bonjour"})
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)

	// Re-selecting the same values must not open a second conversation.
	for i := 0; i < 3; i++ {
		if call, _ := c.SelectLanguage(spanish); call != nil {
			t.Fatal("SelectLanguage re-issued the opening call")
		}
		if call, _ := c.SelectMode(tutor.ModeCrosstalk); call != nil {
			t.Fatal("SelectMode re-issued the opening call")
		}
	}
	if n := fs.count(); n != 1 {
		t.Errorf("sender called %d times, want 1", n)
	}
	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "Bonjour"}}, c.Messages())
}

func TestInit_IdempotentWhileInFlight(t *testing.T) {
	c := New(&fakeSender{})
	if _, err := c.SelectLanguage(spanish); err != nil {
		t.Fatal(err)
	}
	first, _ := c.SelectMode(tutor.ModeImmersion)
	if first == nil {
		t.Fatal("expected opening call")
	}
	if again, _ := c.SelectMode(tutor.ModeImmersion); again != nil {
		t.Error("second identical selection issued another opening call")
	}
}

func TestMissions_InitOnlyAfterMission(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: `{"response":"Welcome to Hotel Sol.","correction":null}`})
	c := New(fs)

	if _, err := c.SelectLanguage(spanish); err != nil {
		t.Fatal(err)
	}
	if call, _ := c.SelectMode(tutor.ModeMissions); call != nil {
		t.Fatal("missions mode without a mission issued a call")
	}
	if fs.count() != 0 {
		t.Fatal("sender called before mission was chosen")
	}

	call, err := c.SelectMission(hotel)
	if err != nil || call == nil {
		t.Fatalf("SelectMission: call=%v err=%v", call, err)
	}
	if call.Request.Config.Mission == nil || call.Request.Config.Mission.ID != "hotel" {
		t.Errorf("opening call mission = %+v", call.Request.Config.Mission)
	}
	c.Do(context.Background(), call)
	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "Welcome to Hotel Sol."}}, c.Messages())
}

func TestInit_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := New(api.NewClient(url))
	if _, err := c.SelectLanguage(spanish); err != nil {
		t.Fatal(err)
	}
	call, _ := c.SelectMode(tutor.ModeImmersion)
	c.Do(context.Background(), call)

	if len(c.Messages()) != 0 {
		t.Errorf("messages = %v, want empty", c.Messages())
	}
	if c.Loading() {
		t.Error("still loading after failure")
	}
	want := "Failed to initialize chat. Could not connect to the LingoBuddy service."
	if got := c.Err(); len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("Err() = %q, want prefix %q", got, want)
	}
	if c.Phase() != PhaseError || c.View() != ViewRecovery || c.Failure() != FailureInit {
		t.Errorf("phase=%v view=%v failure=%v", c.Phase(), c.View(), c.Failure())
	}

	// Dismissing an init failure starts over.
	c.DismissError()
	if c.Phase() != PhaseUnselected || c.View() != ViewLanguagePicker || c.Err() != "" {
		t.Errorf("after dismiss phase=%v view=%v err=%q", c.Phase(), c.View(), c.Err())
	}
}

func TestInit_FailureIgnoresSendAndStillStartsOver(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{err: &api.ServiceError{Kind: api.KindTransport, Message: "connection refused"}})

	c := New(fs)
	if _, err := c.SelectLanguage(spanish); err != nil {
		t.Fatal(err)
	}
	call, _ := c.SelectMode(tutor.ModeImmersion)
	c.Do(context.Background(), call)
	if c.Failure() != FailureInit {
		t.Fatalf("failure = %v, want FailureInit", c.Failure())
	}
	errText := c.Err()

	if call := c.Send("hola"); call != nil {
		t.Error("send after a failed opening call produced a call")
	}
	if c.Failure() != FailureInit || c.Err() != errText {
		t.Errorf("send replaced the init failure: failure=%v err=%q", c.Failure(), c.Err())
	}
	if fs.count() != 1 {
		t.Errorf("sender called %d times, want 1", fs.count())
	}

	c.DismissError()
	if c.Phase() != PhaseUnselected || c.View() != ViewLanguagePicker {
		t.Errorf("after dismiss phase=%v view=%v", c.Phase(), c.View())
	}
	if !c.Language().IsZero() || c.Mode() != "" || c.Err() != "" {
		t.Errorf("selection not cleared: lang=%v mode=%q err=%q", c.Language(), c.Mode(), c.Err())
	}
}

func TestTurn_SuccessWithCorrection(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(
		fakeReply{text: `{"response":"¡Hola!","correction":null}`},
		fakeReply{text: `{"response":"¡Mucho gusto, Ana!","correction":{"original":"Yo es Ana","corrected":"Yo soy Ana","explanation":"Use 'soy' with 'yo'."}}`},
	)
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeImmersion)

	call := c.Send("  Yo es Ana  ")
	if call == nil {
		t.Fatal("Send returned nil call")
	}
	if !c.Loading() || c.Phase() != PhaseSendingTurn {
		t.Errorf("after send loading=%v phase=%v", c.Loading(), c.Phase())
	}
	if call.Request.NewMessage != "Yo es Ana" {
		t.Errorf("NewMessage = %q, want trimmed text", call.Request.NewMessage)
	}
	// History is the log before the new message.
	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "¡Hola!"}}, call.Request.History)

	c.Do(context.Background(), call)
	diffMessages(t, []tutor.Message{
		{Role: tutor.RoleModel, Text: "¡Hola!"},
		{Role: tutor.RoleUser, Text: "Yo es Ana", Correction: &tutor.Correction{
			Original: "Yo es Ana", Corrected: "Yo soy Ana", Explanation: "Use 'soy' with 'yo'.",
		}},
		{Role: tutor.RoleModel, Text: "¡Mucho gusto, Ana!"},
	}, c.Messages())
	if c.Loading() || c.Phase() != PhaseActive {
		t.Errorf("after reply loading=%v phase=%v", c.Loading(), c.Phase())
	}
}

func TestTurn_CorrectionTargetsPendingMessageWithDuplicateText(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(
		fakeReply{text: `{"response":"Hallo!"}`},
		fakeReply{text: `{"response":"Gut."}`},
		fakeReply{text: `{"response":"Wirklich?","correction":{"original":"Ich bin gut","corrected":"Mir geht es gut","explanation":"idiom"}}`},
	)
	c := New(fs)
	startSession(t, c, german, tutor.ModeImmersion)

	c.Do(context.Background(), c.Send("Ich bin gut"))
	c.Do(context.Background(), c.Send("Ich bin gut"))

	msgs := c.Messages()
	if len(msgs) != 5 {
		t.Fatalf("len(messages) = %d, want 5", len(msgs))
	}
	if msgs[1].Correction != nil {
		t.Errorf("first duplicate got correction %+v", msgs[1].Correction)
	}
	if msgs[3].Correction == nil || msgs[3].Correction.Corrected != "Mir geht es gut" {
		t.Errorf("second duplicate correction = %+v", msgs[3].Correction)
	}
}

func TestTurn_FailureRollsBackOnlyPendingMessage(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(
		fakeReply{text: "A"},
		fakeReply{err: &api.ServiceError{Kind: api.KindApplication, Message: "Model is overloaded", Status: 502}},
	)
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)
	before := c.Messages()

	call := c.Send("hola")
	if got := len(c.Messages()); got != len(before)+1 {
		t.Fatalf("optimistic append: len = %d", got)
	}
	c.Do(context.Background(), call)

	diffMessages(t, before, c.Messages())
	if c.Err() != "Sorry, something went wrong. Model is overloaded" {
		t.Errorf("Err() = %q", c.Err())
	}
	if c.Loading() || c.Phase() != PhaseActive || c.Failure() != FailureTurn {
		t.Errorf("loading=%v phase=%v failure=%v", c.Loading(), c.Phase(), c.Failure())
	}
	if c.View() != ViewRecovery {
		t.Errorf("view = %v, want recovery", c.View())
	}

	// Dismissing a turn failure returns to the same conversation.
	c.DismissError()
	if c.View() != ViewConversation || c.Err() != "" {
		t.Errorf("after dismiss view=%v err=%q", c.View(), c.Err())
	}
	diffMessages(t, before, c.Messages())
}

func TestTurn_RollbackWithTwoMessageLog(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(
		fakeReply{text: "A"},
		fakeReply{text: "B"},
		fakeReply{err: errors.New("boom")},
	)
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)
	c.Do(context.Background(), c.Send("first"))

	want := []tutor.Message{
		{Role: tutor.RoleModel, Text: "A"},
		{Role: tutor.RoleUser, Text: "first"},
		{Role: tutor.RoleModel, Text: "B"},
	}
	diffMessages(t, want, c.Messages())

	c.Do(context.Background(), c.Send("second"))
	diffMessages(t, want, c.Messages())
	if c.Err() != "Sorry, something went wrong. boom" {
		t.Errorf("Err() = %q", c.Err())
	}
}

func TestSend_Gating(t *testing.T) {
	fs := &fakeSender{}
	c := New(fs)

	if call := c.Send("   "); call != nil {
		t.Error("blank send produced a call")
	}
	if c.Err() != "" {
		t.Errorf("blank send set error %q", c.Err())
	}

	if call := c.Send("hola"); call != nil {
		t.Error("send without a session produced a call")
	}
	if c.Err() != "Chat is not initialized correctly." || c.Failure() != FailureNotReady {
		t.Errorf("Err() = %q failure=%v", c.Err(), c.Failure())
	}
	c.DismissError()
	if c.Err() != "" {
		t.Error("DismissError did not clear not-ready error")
	}

	fs.queue(fakeReply{text: "hi"})
	startSession(t, c, spanish, tutor.ModeCrosstalk)
	if call := c.Send("uno"); call == nil {
		t.Fatal("first send was ignored")
	}
	if call := c.Send("dos"); call != nil {
		t.Error("send while loading produced a call")
	}
	if n := len(c.Messages()); n != 2 {
		t.Errorf("len(messages) = %d, want 2", n)
	}
}

func TestReset_DiscardsInFlightResult(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "hi"}, fakeReply{text: "late reply"})
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)

	call := c.Send("hola")
	res := c.Run(context.Background(), call)
	c.Reset()

	if c.Apply(res) {
		t.Error("stale result was applied after reset")
	}
	if len(c.Messages()) != 0 || c.Loading() || c.Phase() != PhaseUnselected {
		t.Errorf("state after reset: %+v", c.Snapshot())
	}
}

func TestReselection_DiscardsOldOpeningCall(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "Willkommen"}, fakeReply{text: "Hallo"})
	c := New(fs)

	if _, err := c.SelectLanguage(german); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SelectMode(tutor.ModeMissions); err != nil {
		t.Fatal(err)
	}
	oldCall, _ := c.SelectMission(hotel)
	oldRes := c.Run(context.Background(), oldCall)

	newCall, _ := c.SelectMission(grocery)
	if newCall == nil {
		t.Fatal("changing the mission did not reopen the conversation")
	}
	if newCall.Generation == oldCall.Generation {
		t.Error("generation did not advance on reselection")
	}

	if c.Apply(oldRes) {
		t.Error("old opening result was applied")
	}
	c.Do(context.Background(), newCall)
	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "Hallo"}}, c.Messages())
}

func TestSelectMode_LeavingMissionsClearsMission(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "a"}, fakeReply{text: "b"})
	c := New(fs)
	if _, err := c.SelectLanguage(spanish); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SelectMode(tutor.ModeMissions); err != nil {
		t.Fatal(err)
	}
	opening, err := c.SelectMission(hotel)
	if err != nil {
		t.Fatal(err)
	}
	c.Do(context.Background(), opening)

	call, err := c.SelectMode(tutor.ModeImmersion)
	if err != nil || call == nil {
		t.Fatalf("SelectMode(immersion): call=%v err=%v", call, err)
	}
	if c.Mission() != nil {
		t.Errorf("mission = %+v, want nil", c.Mission())
	}
	if call.Request.Config.Mission != nil {
		t.Error("immersion opening call carried a mission")
	}
}

func TestInit_CorrectionOnGreetingIgnored(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: `{"response":"Ciao","correction":{"original":"x","corrected":"y","explanation":"z"}}`})
	c := New(fs)
	startSession(t, c, tutor.Language{Code: "it", Name: "Italian"}, tutor.ModeImmersion)

	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "Ciao"}}, c.Messages())
}

func TestParseFallback_StructuredModeShowsRawText(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "Hola, plain text"})
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeImmersion)

	diffMessages(t, []tutor.Message{{Role: tutor.RoleModel, Text: "Hola, plain text"}}, c.Messages())
	if c.Err() != "" {
		t.Errorf("decode fault surfaced as error %q", c.Err())
	}
}

func TestRun_ConcurrentWithEventLoop(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "hi"}, fakeReply{text: "there"})
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)

	call := c.Send("hola")
	results := make(chan Result, 1)
	go func() { results <- c.Run(context.Background(), call) }()

	if !c.Apply(<-results) {
		t.Fatal("result discarded")
	}
	if n := len(c.Messages()); n != 3 {
		t.Errorf("len(messages) = %d, want 3", n)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	fs := &fakeSender{}
	fs.queue(fakeReply{text: "x"})
	c := New(fs)
	startSession(t, c, spanish, tutor.ModeCrosstalk)

	msgs := c.Messages()
	msgs[0].Text = "mutated"
	if c.Messages()[0].Text != "x" {
		t.Error("Messages exposed internal slice")
	}
}

func TestDeriveView(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want View
	}{
		{"empty", Snapshot{}, ViewLanguagePicker},
		{"language", Snapshot{Language: spanish}, ViewModePicker},
		{"missions no mission", Snapshot{Language: spanish, Mode: tutor.ModeMissions}, ViewMissionPicker},
		{"missions with mission", Snapshot{Language: spanish, Mode: tutor.ModeMissions, Mission: &hotel}, ViewConversation},
		{"crosstalk", Snapshot{Language: spanish, Mode: tutor.ModeCrosstalk}, ViewConversation},
		{"error wins", Snapshot{Language: spanish, Mode: tutor.ModeCrosstalk, Err: "x"}, ViewRecovery},
		{"error without selection", Snapshot{Err: "x"}, ViewRecovery},
	}
	for _, tt := range tests {
		if got := DeriveView(tt.snap); got != tt.want {
			t.Errorf("%s: DeriveView = %v, want %v", tt.name, got, tt.want)
		}
	}
}
