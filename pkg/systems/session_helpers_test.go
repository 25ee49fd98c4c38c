package systems

import (
	"testing"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/decker502/matreshka/pkg/game"
)

// testFrame 测试使用的帧间隔（二进制精确值，累加无误差）
const testFrame = 1.0 / 64

// stubModal 只记录打开状态和结果
type stubModal struct {
	onPause  func()
	onResume func()
	open     bool
	results  []game.Results
}

func (m *stubModal) OnPauseRequested(fn func())  { m.onPause = fn }
func (m *stubModal) OnResumeRequested(fn func()) { m.onResume = fn }

func (m *stubModal) ShowBlockingMessage(title string, body []string, actions []game.Action) {
	m.open = true
	if m.onPause != nil {
		m.onPause()
	}
}

func (m *stubModal) ShowResults(r game.Results) {
	m.open = true
	m.results = append(m.results, r)
}

func (m *stubModal) Close() {
	if !m.open {
		return
	}
	m.open = false
	if m.onResume != nil {
		m.onResume()
	}
}

func (m *stubModal) IsOpen() bool { return m.open }

// memoryScores 内存成绩表
type memoryScores struct {
	best map[config.LevelID]int
}

func (p *memoryScores) BestScore(level config.LevelID) (int, error) { return p.best[level], nil }

func (p *memoryScores) SetBestScore(level config.LevelID, score int) error {
	p.best[level] = score
	return nil
}

func (p *memoryScores) UserPreference(field string) (string, error) { return "", nil }

// recordingFeedback 记录提示音和飘字
type recordingFeedback struct {
	cues   []game.Cue
	popups []int
}

func (f *recordingFeedback) Cue(c game.Cue)                { f.cues = append(f.cues, c) }
func (f *recordingFeedback) Popup(x, y float64, delta int) { f.popups = append(f.popups, delta) }

func (f *recordingFeedback) count(c game.Cue) int {
	n := 0
	for _, got := range f.cues {
		if got == c {
			n++
		}
	}
	return n
}

// newTestSession 创建使用桩协作者的会话
func newTestSession(t *testing.T, m game.Mechanic, profile config.DifficultyProfile) (*game.Session, *stubModal, *recordingFeedback) {
	t.Helper()
	if profile.Name == "" {
		profile.Name = config.DifficultyMedium
	}
	if profile.ScoreMultiplier == 0 {
		profile.ScoreMultiplier = 1
	}
	modal := &stubModal{}
	feedback := &recordingFeedback{}
	s, err := game.NewSession(game.SessionConfig{
		Profile:     profile,
		Mechanic:    m,
		Persistence: &memoryScores{best: map[config.LevelID]int{}},
		Modal:       modal,
		Feedback:    feedback,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, modal, feedback
}

// advance 以固定帧间隔推进会话 seconds 秒
func advance(s *game.Session, seconds float64) {
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += testFrame {
		s.Update(testFrame)
	}
}

func pointer(kind game.InputKind, x, y float64) game.InputEvent {
	return game.InputEvent{Kind: kind, X: x, Y: y}
}
