package game

import (
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/decker502/matreshka/pkg/config"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// UserRecord 单个用户的存档
type UserRecord struct {
	Username     string         `yaml:"username"`
	PasswordHash string         `yaml:"passwordHash,omitempty"` // 为空表示本地无密码档案
	Difficulty   string         `yaml:"difficulty"`
	AvatarColor  string         `yaml:"avatarColor"`
	Volume       string         `yaml:"volume"`
	RegisteredAt time.Time      `yaml:"registeredAt"`
	LastLoginAt  time.Time      `yaml:"lastLoginAt"`
	Scores       map[string]int `yaml:"scores"` // 关卡ID -> 最佳成绩
}

// UserListData 用户索引
type UserListData struct {
	Users       []string `yaml:"users"`       // 用户名（保持注册顺序）
	CurrentUser string   `yaml:"currentUser"` // 当前登录的用户名
}

// gdata 存储键
const (
	profilesObject = "profiles"
	indexProperty  = "index"
)

// SaveManager 基于 gdata 的用户与成绩存储
//
// 职责：
//   - 注册、登录、切换用户（密码使用 bcrypt 哈希）
//   - 读写每关最佳成绩和用户偏好
//   - 生成排行榜
//
// 存储布局：
//   - profiles/index: 用户索引（YAML）
//   - profiles/user_<hex>: 单个用户记录（YAML）
//
// gdataManager 为 nil 时进入降级模式：所有数据只保存在内存中。
type SaveManager struct {
	gdataManager *gdata.Manager
	users        map[string]*UserRecord // 小写用户名 -> 记录
	index        *UserListData
	currentKey   string
	now          func() time.Time
}

// NewSaveManager 创建存储并加载已有用户
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//
// 返回：
//   - *SaveManager: 存储实例
//   - error: 用户索引损坏时返回错误
func NewSaveManager(gdataManager *gdata.Manager) (*SaveManager, error) {
	sm := &SaveManager{
		gdataManager: gdataManager,
		users:        make(map[string]*UserRecord),
		index:        &UserListData{Users: []string{}},
		now:          time.Now,
	}

	if err := sm.loadIndex(); err != nil {
		return nil, fmt.Errorf("failed to load user list: %w", err)
	}

	for _, name := range sm.index.Users {
		rec, err := sm.loadRecord(name)
		if err != nil {
			log.Printf("[SaveManager] Warning: skipping user %s: %v", name, err)
			continue
		}
		sm.users[userKey(name)] = rec
	}

	if cur := userKey(sm.index.CurrentUser); cur != "" {
		if _, ok := sm.users[cur]; ok {
			sm.currentKey = cur
		}
	}

	log.Printf("[SaveManager] Loaded %d users (current: %q)", len(sm.users), sm.CurrentUser())
	return sm, nil
}

func userKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func userProperty(username string) string {
	return "user_" + hex.EncodeToString([]byte(userKey(username)))
}

func (sm *SaveManager) loadIndex() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(profilesObject, indexProperty) {
		return nil
	}
	data, err := sm.gdataManager.LoadObjectProp(profilesObject, indexProperty)
	if err != nil {
		return err
	}
	var index UserListData
	if err := yaml.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to parse user list: %w", err)
	}
	sm.index = &index
	return nil
}

func (sm *SaveManager) loadRecord(username string) (*UserRecord, error) {
	prop := userProperty(username)
	if !sm.gdataManager.ObjectPropExists(profilesObject, prop) {
		return nil, ErrUserNotFound
	}
	data, err := sm.gdataManager.LoadObjectProp(profilesObject, prop)
	if err != nil {
		return nil, err
	}
	var rec UserRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}
	if rec.Scores == nil {
		rec.Scores = make(map[string]int)
	}
	return &rec, nil
}

func (sm *SaveManager) saveIndex() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.index)
	if err != nil {
		return fmt.Errorf("failed to marshal user list: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(profilesObject, indexProperty, data); err != nil {
		return fmt.Errorf("failed to write user list: %w", err)
	}
	return nil
}

func (sm *SaveManager) saveRecord(rec *UserRecord) error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", rec.Username, err)
	}
	if err := sm.gdataManager.SaveObjectProp(profilesObject, userProperty(rec.Username), data); err != nil {
		return fmt.Errorf("failed to write user %s: %w", rec.Username, err)
	}
	return nil
}

func (sm *SaveManager) current() (*UserRecord, error) {
	rec, ok := sm.users[sm.currentKey]
	if !ok {
		return nil, ErrNoUser
	}
	return rec, nil
}

func (sm *SaveManager) createUser(username, passwordHash string) (*UserRecord, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if _, exists := sm.users[userKey(username)]; exists {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	now := sm.now()
	rec := &UserRecord{
		Username:     username,
		PasswordHash: passwordHash,
		Difficulty:   string(config.DefaultDifficulty),
		AvatarColor:  string(config.DefaultAvatarColor),
		Volume:       "0.80",
		RegisteredAt: now,
		LastLoginAt:  now,
		Scores:       make(map[string]int),
	}
	sm.users[userKey(username)] = rec
	sm.index.Users = append(sm.index.Users, username)

	if err := sm.saveRecord(rec); err != nil {
		return nil, err
	}
	log.Printf("[SaveManager] Created user %s", username)
	return rec, nil
}

func (sm *SaveManager) switchTo(rec *UserRecord) error {
	rec.LastLoginAt = sm.now()
	sm.currentKey = userKey(rec.Username)
	sm.index.CurrentUser = rec.Username
	if err := sm.saveRecord(rec); err != nil {
		return err
	}
	return sm.saveIndex()
}

// Register 注册新用户并登录
func (sm *SaveManager) Register(username, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	rec, err := sm.createUser(username, hash)
	if err != nil {
		return err
	}
	return sm.switchTo(rec)
}

// Login 校验密码并切换当前用户
func (sm *SaveManager) Login(username, password string) error {
	rec, ok := sm.users[userKey(username)]
	if !ok {
		return ErrBadCredentials
	}
	if rec.PasswordHash != "" {
		if err := CheckPassword(rec.PasswordHash, password); err != nil {
			return err
		}
	}
	return sm.switchTo(rec)
}

// UseProfile 切换到本地无密码档案，不存在则创建
// 设置过密码的用户必须通过 Login 登录
func (sm *SaveManager) UseProfile(username string) error {
	rec, ok := sm.users[userKey(username)]
	if ok {
		if rec.PasswordHash != "" {
			return ErrBadCredentials
		}
		return sm.switchTo(rec)
	}
	rec, err := sm.createUser(username, "")
	if err != nil {
		return err
	}
	return sm.switchTo(rec)
}

// Logout 退出当前用户
func (sm *SaveManager) Logout() {
	sm.currentKey = ""
	sm.index.CurrentUser = ""
	if err := sm.saveIndex(); err != nil {
		log.Printf("[SaveManager] Warning: %v", err)
	}
}

// CurrentUser 当前用户名
func (sm *SaveManager) CurrentUser() string {
	if rec, ok := sm.users[sm.currentKey]; ok {
		return rec.Username
	}
	return ""
}

// Users 按注册顺序返回全部用户
func (sm *SaveManager) Users() ([]UserInfo, error) {
	out := make([]UserInfo, 0, len(sm.index.Users))
	for _, name := range sm.index.Users {
		rec, ok := sm.users[userKey(name)]
		if !ok {
			continue
		}
		out = append(out, UserInfo{
			Username:     rec.Username,
			AvatarColor:  rec.AvatarColor,
			Difficulty:   rec.Difficulty,
			RegisteredAt: rec.RegisteredAt,
		})
	}
	return out, nil
}

// BestScore 当前用户在某关的最佳成绩，没有记录返回 0
func (sm *SaveManager) BestScore(level config.LevelID) (int, error) {
	rec, err := sm.current()
	if err != nil {
		return 0, err
	}
	return rec.Scores[string(level)], nil
}

// SetBestScore 写入当前用户某关的最佳成绩
func (sm *SaveManager) SetBestScore(level config.LevelID, score int) error {
	rec, err := sm.current()
	if err != nil {
		return err
	}
	previous, had := rec.Scores[string(level)]
	rec.Scores[string(level)] = score
	if err := sm.saveRecord(rec); err != nil {
		if had {
			rec.Scores[string(level)] = previous
		} else {
			delete(rec.Scores, string(level))
		}
		return err
	}
	return nil
}

// UserPreference 读取当前用户的偏好，字段为空时返回默认值
func (sm *SaveManager) UserPreference(field string) (string, error) {
	rec, err := sm.current()
	if err != nil {
		return "", err
	}
	var value string
	switch field {
	case PrefDifficulty:
		value = rec.Difficulty
	case PrefAvatarColor:
		value = rec.AvatarColor
	case PrefVolume:
		value = rec.Volume
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownPreference, field)
	}
	if value == "" {
		return DefaultPreference(field)
	}
	return value, nil
}

// SetUserPreference 修改当前用户的偏好
func (sm *SaveManager) SetUserPreference(field, value string) error {
	rec, err := sm.current()
	if err != nil {
		return err
	}
	normalized, err := NormalizePreference(field, value)
	if err != nil {
		return err
	}
	switch field {
	case PrefDifficulty:
		rec.Difficulty = normalized
	case PrefAvatarColor:
		rec.AvatarColor = normalized
	case PrefVolume:
		rec.Volume = normalized
	}
	return sm.saveRecord(rec)
}

// ResetProgress 清空当前用户的全部成绩
func (sm *SaveManager) ResetProgress() error {
	rec, err := sm.current()
	if err != nil {
		return err
	}
	rec.Scores = make(map[string]int)
	log.Printf("[SaveManager] Reset progress for %s", rec.Username)
	return sm.saveRecord(rec)
}

// DeleteUser 从索引中移除用户
// gdata 中的记录会在同名用户再次注册时被覆盖
func (sm *SaveManager) DeleteUser(username string) error {
	key := userKey(username)
	if _, ok := sm.users[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	delete(sm.users, key)

	kept := sm.index.Users[:0]
	for _, name := range sm.index.Users {
		if userKey(name) != key {
			kept = append(kept, name)
		}
	}
	sm.index.Users = kept

	if sm.currentKey == key {
		sm.currentKey = ""
		sm.index.CurrentUser = ""
	}
	return sm.saveIndex()
}

// TopScores 某关的排行榜，按分数降序、同分按用户名升序
func (sm *SaveManager) TopScores(level config.LevelID, limit int) ([]ScoreEntry, error) {
	entries := make([]ScoreEntry, 0)
	for _, rec := range sm.users {
		score, ok := rec.Scores[string(level)]
		if !ok || score <= 0 {
			continue
		}
		entries = append(entries, ScoreEntry{
			Username:    rec.Username,
			AvatarColor: rec.AvatarColor,
			Score:       score,
		})
	}
	SortScoreEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close gdata 不需要释放资源
func (sm *SaveManager) Close() error {
	return nil
}

// SortScoreEntries 排行榜排序规则
func SortScoreEntries(entries []ScoreEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
}

// VolumeOf 把偏好字符串转换为音量，非法值返回默认值
func VolumeOf(pref string) float64 {
	v, err := strconv.ParseFloat(pref, 64)
	if err != nil || v < 0 || v > 1 {
		return 0.8
	}
	return v
}
