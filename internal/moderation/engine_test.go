package moderation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatguard/internal/auditlog"
	"chatguard/internal/normalize"
)

type fakeBios struct {
	bio   string
	err   error
	calls int
}

func (f *fakeBios) UserBio(userID int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.bio, nil
}

type fakeEnforcer struct {
	outcome Outcome
	calls   int
}

func (f *fakeEnforcer) Ban(chatID, userID int64, messageID int) Outcome {
	f.calls++
	return f.outcome
}

type fakeRecorder struct {
	entries []auditlog.Entry
	err     error
}

func (f *fakeRecorder) Record(e auditlog.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

type engineFixture struct {
	engine   *Engine
	bios     *fakeBios
	enforcer *fakeEnforcer
	audit    *fakeRecorder
}

func newEngineFixture(t *testing.T, phrases ...string) *engineFixture {
	t.Helper()

	roster, err := SnapshotRoster(&fakeAdminSource{admins: map[int64][]Admin{
		-100: {{UserID: 1, Name: "alice"}},
	}}, []int64{-100})
	require.NoError(t, err)

	fx := &engineFixture{
		bios:     &fakeBios{},
		enforcer: &fakeEnforcer{outcome: OutcomeSuccess},
		audit:    &fakeRecorder{},
	}
	filter := NewFilter(normalize.New(testConfusables), phrases)
	fx.engine = NewEngine([]int64{-100}, roster, filter, fx.bios, fx.enforcer, fx.audit, zap.NewNop())
	fx.engine.now = func() time.Time { return time.Date(2025, 5, 13, 10, 0, 0, 0, time.Local) }
	return fx
}

func stages(entries []auditlog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Stage
	}
	return out
}

func TestIsValidChat(t *testing.T) {
	fx := newEngineFixture(t)

	require.True(t, fx.engine.IsValidChat(-100))
	require.False(t, fx.engine.IsValidChat(-999))
}

func TestProcess_UnsupportedChatShortCircuits(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	msg := Message{ChatID: -999, UserID: 42, MessageID: 7, Text: strPtr("привет")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictUnsupportedChat, verdict)
	require.Equal(t, []string{"unsupported-chat"}, stages(fx.audit.entries))
	require.Zero(t, fx.bios.calls, "bio must not be fetched for an unsupported chat")
	require.Zero(t, fx.enforcer.calls, "no enforcement for an unsupported chat")
}

func TestProcess_TrustedNeverEnforced(t *testing.T) {
	fx := newEngineFixture(t, "привет")

	trusted := []Message{
		{ChatID: -100, UserID: 1, MessageID: 7, Text: strPtr("привет")},
		{ChatID: -100, UserID: 50, IsBot: true, MessageID: 8, Text: strPtr("привет")},
		{ChatID: -100, UserID: TelegramServiceAccountID, MessageID: 9, Text: strPtr("привет")},
	}

	for _, msg := range trusted {
		verdict, err := fx.engine.Process(msg)
		require.NoError(t, err)
		require.Equal(t, VerdictTrusted, verdict)
	}
	require.Zero(t, fx.enforcer.calls)
	require.Zero(t, fx.bios.calls)
	require.Equal(t, []string{"trusted", "trusted", "trusted"}, stages(fx.audit.entries))
}

func TestProcess_ValidMessage(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	fx.bios.bio = "просто человек"
	msg := Message{ChatID: -100, ChatTitle: "Chat", UserID: 42, UserName: "mallory", MessageID: 7, Text: strPtr("добрый день")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictValid, verdict)
	require.Equal(t, []string{"valid"}, stages(fx.audit.entries))
	require.Equal(t, 1, fx.bios.calls)
	require.Zero(t, fx.enforcer.calls)
}

func TestProcess_InvalidMessageIsEnforced(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	msg := Message{ChatID: -100, ChatTitle: "Chat", UserID: 42, UserName: "mallory", MessageID: 7, Text: strPtr("привет1234")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, verdict)
	require.Equal(t, 1, fx.enforcer.calls)
	require.Equal(t, []string{"invalid", "ban-success"}, stages(fx.audit.entries))

	first := fx.audit.entries[0]
	require.NotNil(t, first.ChatID)
	require.Equal(t, int64(-100), *first.ChatID)
	require.NotNil(t, first.UserID)
	require.Equal(t, int64(42), *first.UserID)
	require.NotNil(t, first.Text)
	require.Equal(t, "привет1234", *first.Text)
}

func TestProcess_EnforcementFailureIsAudited(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	fx.enforcer.outcome = OutcomeFail
	msg := Message{ChatID: -100, UserID: 42, MessageID: 7, Text: strPtr("привет")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, verdict)
	require.Equal(t, []string{"invalid", "ban-fail"}, stages(fx.audit.entries))
}

func TestProcess_DirtyBioIsInvalid(t *testing.T) {
	fx := newEngineFixture(t, "заработок")
	fx.bios.bio = "лёгкий заработок, пиши в личку"
	msg := Message{ChatID: -100, UserID: 42, MessageID: 7, Text: strPtr("добрый день")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, verdict)
	require.Equal(t, 1, fx.enforcer.calls)

	require.NotNil(t, fx.audit.entries[0].UserBio)
	require.Equal(t, fx.bios.bio, *fx.audit.entries[0].UserBio)
}

func TestProcess_BioFetchFailureModeratesOnTextAlone(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	fx.bios.err = errors.New("telegram: timeout")
	msg := Message{ChatID: -100, UserID: 42, MessageID: 7, Text: strPtr("добрый день")}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictValid, verdict)
	require.Nil(t, fx.audit.entries[0].UserBio)
}

func TestProcess_AbsentTextWithCleanBioIsValid(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	msg := Message{ChatID: -100, UserID: 42, MessageID: 7}

	verdict, err := fx.engine.Process(msg)

	require.NoError(t, err)
	require.Equal(t, VerdictValid, verdict)
}

func TestProcess_AuditFailurePropagates(t *testing.T) {
	fx := newEngineFixture(t, "привет")
	fx.audit.err = errors.New("disk full")
	msg := Message{ChatID: -100, UserID: 42, MessageID: 7, Text: strPtr("добрый день")}

	_, err := fx.engine.Process(msg)

	require.Error(t, err)
}
