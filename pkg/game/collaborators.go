package game

import (
	"errors"
	"time"

	"github.com/decker502/matreshka/pkg/config"
)

// 用户偏好字段
const (
	PrefDifficulty  = "difficulty"
	PrefAvatarColor = "avatarColor"
	PrefVolume      = "volume"
)

// LeaderboardSize 每关排行榜显示的人数
const LeaderboardSize = 10

var (
	// ErrNoUser 没有登录用户
	ErrNoUser = errors.New("no user logged in")
	// ErrUserExists 用户名已被注册
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials 密码错误
	ErrBadCredentials = errors.New("invalid username or password")
	// ErrUnknownPreference 未知偏好字段
	ErrUnknownPreference = errors.New("unknown preference field")
)

// Persistence 会话需要的成绩存取接口（针对当前用户）
type Persistence interface {
	BestScore(level config.LevelID) (int, error)
	SetBestScore(level config.LevelID, score int) error
	UserPreference(field string) (string, error)
}

// ScoreEntry 排行榜条目
type ScoreEntry struct {
	Username    string
	AvatarColor string
	Score       int
}

// Leaderboard 排行榜查询
type Leaderboard interface {
	TopScores(level config.LevelID, limit int) ([]ScoreEntry, error)
}

// UserInfo 用户公开信息
type UserInfo struct {
	Username     string
	AvatarColor  string
	Difficulty   string
	RegisteredAt time.Time
}

// UserStore 用户与成绩存储，gdata 和 sqlite 两种后端都实现该接口
type UserStore interface {
	Persistence
	Leaderboard

	// Register 注册新用户并登录
	Register(username, password string) error
	// Login 校验密码并切换当前用户
	Login(username, password string) error
	// UseProfile 切换到无密码的本地档案，不存在时创建
	UseProfile(username string) error
	// Logout 退出当前用户
	Logout()
	// CurrentUser 当前用户名，未登录为空
	CurrentUser() string
	// Users 全部用户
	Users() ([]UserInfo, error)
	// SetUserPreference 修改当前用户的偏好
	SetUserPreference(field, value string) error
	// ResetProgress 清空当前用户的全部成绩
	ResetProgress() error
	// DeleteUser 删除用户及其成绩
	DeleteUser(username string) error
	// Close 释放底层资源
	Close() error
}

// Action 对话框按钮
// 点击后对话框先关闭，再执行 Run（可为 nil）
type Action struct {
	Label string
	Run   func()
}

// StatLine 结果面板中的一行统计
type StatLine struct {
	Label string
	Value string
}

// Results 一局结束后展示的数据
type Results struct {
	Level       config.LevelID
	Difficulty  config.Difficulty
	Victory     bool
	Score       int
	BestScore   int
	NewRecord   bool
	SaveFailed  bool
	Stats       []StatLine
	Leaderboard []ScoreEntry
	CurrentUser string
	Actions     []Action
}

// Modal 模态对话框服务
//
// ShowBlockingMessage 打开的对话框会调用暂停钩子，Close 调用恢复钩子；
// ShowResults 替换任何已打开的对话框且不调用钩子。
type Modal interface {
	OnPauseRequested(fn func())
	OnResumeRequested(fn func())
	ShowBlockingMessage(title string, body []string, actions []Action)
	ShowResults(results Results)
	Close()
	IsOpen() bool
}

// Cue 反馈提示类型
type Cue int

const (
	CueSuccess Cue = iota
	CueError
	CueVictory
	CueDefeat
	CueClick
)

// String 返回提示名称（用于日志）
func (c Cue) String() string {
	switch c {
	case CueSuccess:
		return "success"
	case CueError:
		return "error"
	case CueVictory:
		return "victory"
	case CueDefeat:
		return "defeat"
	case CueClick:
		return "click"
	}
	return "unknown"
}

// Feedback 声音和飘字反馈
type Feedback interface {
	Cue(c Cue)
	Popup(x, y float64, delta int)
}

type noFeedback struct{}

func (noFeedback) Cue(Cue)                     {}
func (noFeedback) Popup(float64, float64, int) {}
