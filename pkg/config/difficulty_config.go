package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/decker502/matreshka/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// LevelID 关卡标识，同时作为成绩表的键
type LevelID string

const (
	LevelGrowth   LevelID = "level1" // 第一关：长大的套娃
	LevelMatch    LevelID = "level2" // 第二关：翻牌配对
	LevelSequence LevelID = "level3" // 第三关：按顺序拼词
	LevelAssembly LevelID = "level4" // 第四关：组装套娃
)

// AllLevels 按菜单顺序列出全部关卡
var AllLevels = []LevelID{LevelGrowth, LevelMatch, LevelSequence, LevelAssembly}

// Title 返回关卡在界面上显示的名称
func (l LevelID) Title() string {
	switch l {
	case LevelGrowth:
		return "Growing Dolls"
	case LevelMatch:
		return "Find the Pairs"
	case LevelSequence:
		return "Spell the Word"
	case LevelAssembly:
		return "Assemble the Doll"
	}
	return string(l)
}

// ParseLevelID 解析关卡标识，接受 "level2" 或 "2"
func ParseLevelID(s string) (LevelID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "level") {
		s = "level" + s
	}
	for _, l := range AllLevels {
		if LevelID(s) == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Difficulty 难度名称
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty 新用户的默认难度
const DefaultDifficulty = DifficultyMedium

// AllDifficulties 难度循环顺序
var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty 解析难度名称，未知值回退到默认难度
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllDifficulties {
		if d == known {
			return d, true
		}
	}
	return DefaultDifficulty, false
}

// Next 返回循环中的下一个难度
func (d Difficulty) Next() Difficulty {
	for i, known := range AllDifficulties {
		if d == known {
			return AllDifficulties[(i+1)%len(AllDifficulties)]
		}
	}
	return DefaultDifficulty
}

// GrowthParams 第一关参数
type GrowthParams struct {
	GrowRate    float64 `yaml:"growRate"`    // 每秒放大比例
	SizeFactor  float64 `yaml:"sizeFactor"`  // 尺寸系数，决定边界和新套娃大小
	TargetDolls int     `yaml:"targetDolls"` // 需要收集的套娃数量
}

// MatchParams 第二关参数
type MatchParams struct {
	Pairs int `yaml:"pairs"`
	Cols  int `yaml:"cols"`
	Rows  int `yaml:"rows"`
}

// SequenceParams 第三关参数
type SequenceParams struct {
	BasePoints     int      `yaml:"basePoints"`
	PreviewSeconds float64  `yaml:"previewSeconds"`
	Words          []string `yaml:"words"`
}

// AssemblyParams 第四关参数
type AssemblyParams struct {
	DollCount           int     `yaml:"dollCount"`
	BasePoints          int     `yaml:"basePoints"`
	MinSize             float64 `yaml:"minSize"`
	SpeedMultiplier     float64 `yaml:"speedMultiplier"`
	TimeBonusMultiplier float64 `yaml:"timeBonusMultiplier"`
}

// DifficultyProfile 某关卡某难度下的全部参数，会话期间不可变
type DifficultyProfile struct {
	Name            Difficulty `yaml:"-"`
	TimeLimit       int        `yaml:"timeLimit"`       // 秒
	ScoreMultiplier float64    `yaml:"scoreMultiplier"` // 得分倍率
	VictoryBonus    int        `yaml:"victoryBonus"`    // 胜利时剩余时间奖励上限

	Growth   *GrowthParams   `yaml:"growth,omitempty"`
	Match    *MatchParams    `yaml:"match,omitempty"`
	Sequence *SequenceParams `yaml:"sequence,omitempty"`
	Assembly *AssemblyParams `yaml:"assembly,omitempty"`
}

// DifficultyConfig 全部关卡的难度配置
type DifficultyConfig struct {
	Levels map[LevelID]map[Difficulty]*DifficultyProfile `yaml:"levels"`
}

// LoadDifficultyConfig 从磁盘读取难度配置
func LoadDifficultyConfig(path string) (*DifficultyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read difficulty config file %s: %w", path, err)
	}
	return ParseDifficultyConfig(data, path)
}

// LoadEmbeddedDifficultyConfig 从嵌入资源读取难度配置（路径以 "data/" 开头）
func LoadEmbeddedDifficultyConfig(path string) (*DifficultyConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded difficulty config %s: %w", path, err)
	}
	return ParseDifficultyConfig(data, path)
}

// ParseDifficultyConfig 解析 YAML，填充默认值并校验
// source 仅用于错误信息
func ParseDifficultyConfig(data []byte, source string) (*DifficultyConfig, error) {
	var cfg DifficultyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse difficulty config YAML from %s: %w", source, err)
	}

	applyDifficultyDefaults(&cfg)

	if err := validateDifficultyConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid difficulty config in %s: %w", source, err)
	}
	return &cfg, nil
}

// Profile 返回指定关卡和难度的参数副本
func (c *DifficultyConfig) Profile(level LevelID, difficulty Difficulty) (DifficultyProfile, error) {
	byDifficulty, ok := c.Levels[level]
	if !ok {
		return DifficultyProfile{}, fmt.Errorf("no difficulty profiles for level %s", level)
	}
	profile, ok := byDifficulty[difficulty]
	if !ok {
		return DifficultyProfile{}, fmt.Errorf("level %s has no %q profile", level, difficulty)
	}
	return *profile, nil
}

func applyDifficultyDefaults(cfg *DifficultyConfig) {
	for _, byDifficulty := range cfg.Levels {
		for name, p := range byDifficulty {
			if p == nil {
				continue
			}
			p.Name = name
			if p.ScoreMultiplier == 0 {
				p.ScoreMultiplier = 1.0
			}
			if p.Sequence != nil {
				if p.Sequence.PreviewSeconds == 0 {
					p.Sequence.PreviewSeconds = 3
				}
				for i, w := range p.Sequence.Words {
					p.Sequence.Words[i] = strings.ToUpper(strings.TrimSpace(w))
				}
			}
			if p.Match != nil && p.Match.Cols == 0 && p.Match.Rows == 0 {
				// 默认两行
				p.Match.Rows = 2
				p.Match.Cols = p.Match.Pairs
			}
		}
	}
}

func validateDifficultyConfig(cfg *DifficultyConfig) error {
	if len(cfg.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}
	for level, byDifficulty := range cfg.Levels {
		if _, err := ParseLevelID(string(level)); err != nil {
			return err
		}
		for _, d := range AllDifficulties {
			p, ok := byDifficulty[d]
			if !ok || p == nil {
				return fmt.Errorf("level %s: missing %q profile", level, d)
			}
			if err := validateProfile(level, p); err != nil {
				return fmt.Errorf("level %s, %s: %w", level, d, err)
			}
		}
	}
	return nil
}

func validateProfile(level LevelID, p *DifficultyProfile) error {
	if p.TimeLimit <= 0 {
		return fmt.Errorf("timeLimit must be positive, got %d", p.TimeLimit)
	}
	if p.ScoreMultiplier <= 0 {
		return fmt.Errorf("scoreMultiplier must be positive, got %v", p.ScoreMultiplier)
	}
	if p.VictoryBonus < 0 {
		return fmt.Errorf("victoryBonus cannot be negative, got %d", p.VictoryBonus)
	}

	set := 0
	for _, present := range []bool{p.Growth != nil, p.Match != nil, p.Sequence != nil, p.Assembly != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one mechanic parameter set is required, got %d", set)
	}

	switch level {
	case LevelGrowth:
		g := p.Growth
		if g == nil {
			return fmt.Errorf("growth parameters are required")
		}
		if g.GrowRate <= 0 || g.TargetDolls <= 0 {
			return fmt.Errorf("growRate and targetDolls must be positive")
		}
		if g.SizeFactor <= 0 || g.SizeFactor >= 1 {
			return fmt.Errorf("sizeFactor must be in (0, 1), got %v", g.SizeFactor)
		}
	case LevelMatch:
		m := p.Match
		if m == nil {
			return fmt.Errorf("match parameters are required")
		}
		if m.Pairs <= 0 {
			return fmt.Errorf("pairs must be positive, got %d", m.Pairs)
		}
		if m.Cols*m.Rows != m.Pairs*2 {
			return fmt.Errorf("grid %dx%d cannot hold %d pairs", m.Cols, m.Rows, m.Pairs)
		}
		if m.Pairs > len(PlayableColors()) {
			return fmt.Errorf("pairs cannot exceed %d colors, got %d", len(PlayableColors()), m.Pairs)
		}
	case LevelSequence:
		s := p.Sequence
		if s == nil {
			return fmt.Errorf("sequence parameters are required")
		}
		if s.BasePoints <= 0 {
			return fmt.Errorf("basePoints must be positive, got %d", s.BasePoints)
		}
		if len(s.Words) == 0 {
			return fmt.Errorf("at least one word is required")
		}
		for i, w := range s.Words {
			if w == "" {
				return fmt.Errorf("words[%d] is empty", i)
			}
		}
	case LevelAssembly:
		a := p.Assembly
		if a == nil {
			return fmt.Errorf("assembly parameters are required")
		}
		if a.DollCount <= 0 || a.BasePoints <= 0 {
			return fmt.Errorf("dollCount and basePoints must be positive")
		}
		if a.MinSize <= 0 || a.MinSize >= AssemblyLargestChildSize {
			return fmt.Errorf("minSize must be in (0, %v), got %v", AssemblyLargestChildSize, a.MinSize)
		}
		// 子套娃尺寸取整后必须严格递减
		step := (AssemblyLargestChildSize - a.MinSize) / float64(a.DollCount)
		prev := math.Inf(1)
		for i := 0; i < a.DollCount; i++ {
			size := math.Round(AssemblyLargestChildSize - step*float64(i+1))
			if size >= prev {
				return fmt.Errorf("minSize %v leaves duplicate sizes for %d dolls", a.MinSize, a.DollCount)
			}
			prev = size
		}
		if a.SpeedMultiplier < 0 {
			return fmt.Errorf("speedMultiplier cannot be negative")
		}
	}
	return nil
}
