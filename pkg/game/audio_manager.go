package game

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleRate 音频采样率
const SampleRate = 44100

// tone 一个音符：频率（Hz，0 表示静音）和时长（秒）
type tone struct {
	freq     float64
	duration float64
}

// 每种提示音的音符序列
var cueTones = map[Cue][]tone{
	CueSuccess: {{659.25, 0.08}, {987.77, 0.12}},
	CueError:   {{196.00, 0.18}, {0, 0.03}, {174.61, 0.16}},
	CueVictory: {{523.25, 0.12}, {659.25, 0.12}, {783.99, 0.12}, {1046.50, 0.3}},
	CueDefeat:  {{392.00, 0.2}, {329.63, 0.2}, {261.63, 0.4}},
	CueClick:   {{1200, 0.03}},
}

// SynthesizeCue 生成提示音的 PCM 数据（16 位有符号小端、双声道）
// 每个音符带 5ms 的淡入淡出，避免爆音
func SynthesizeCue(c Cue, sampleRate int) []byte {
	tones, ok := cueTones[c]
	if !ok {
		return nil
	}

	var out []byte
	fade := int(float64(sampleRate) * 0.005)
	for _, tn := range tones {
		n := int(tn.duration * float64(sampleRate))
		buf := make([]byte, n*4)
		for i := 0; i < n; i++ {
			var v float64
			if tn.freq > 0 {
				v = math.Sin(2*math.Pi*tn.freq*float64(i)/float64(sampleRate)) * 0.3
				if i < fade {
					v *= float64(i) / float64(fade)
				} else if n-i < fade {
					v *= float64(n-i) / float64(fade)
				}
			}
			s := uint16(int16(v * math.MaxInt16))
			binary.LittleEndian.PutUint16(buf[i*4:], s)
			binary.LittleEndian.PutUint16(buf[i*4+2:], s)
		}
		out = append(out, buf...)
	}
	return out
}

// AudioManager 提示音播放
//
// 职责：
//   - 启动时为每种 Cue 合成一次 PCM 并缓存播放器
//   - 播放时应用设备级音效开关和当前用户的音量偏好
//
// context 为 nil 时（测试、无音频设备）只记录日志。
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager
	volume          func() float64 // 当前用户音量，可为 nil
	players         map[Cue]*audio.Player
	lastCue         Cue
	played          int
}

// NewAudioManager 创建音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，可为 nil
//   - sm: 设置管理器（读取音效开关），可为 nil
//   - volume: 返回当前音量 0.0 ~ 1.0，可为 nil（使用 0.8）
func NewAudioManager(ctx *audio.Context, sm *SettingsManager, volume func() float64) *AudioManager {
	am := &AudioManager{
		context:         ctx,
		settingsManager: sm,
		volume:          volume,
		players:         make(map[Cue]*audio.Player),
	}
	if ctx != nil {
		for cue := range cueTones {
			am.players[cue] = ctx.NewPlayerFromBytes(SynthesizeCue(cue, ctx.SampleRate()))
		}
		log.Printf("[AudioManager] Synthesized %d cues", len(am.players))
	}
	return am
}

// Play 播放提示音
//
// 返回：
//   - bool: 是否真正播放（音效关闭或无音频设备时为 false）
func (am *AudioManager) Play(c Cue) bool {
	am.lastCue = c
	am.played++

	if am.settingsManager != nil && !am.settingsManager.Settings().SoundEnabled {
		return false
	}
	player, ok := am.players[c]
	if !ok {
		return false
	}

	player.SetVolume(am.currentVolume())
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind cue %s: %v", c, err)
	}
	player.Play()
	return true
}

// Cue 实现 Feedback 的声音部分
func (am *AudioManager) Cue(c Cue) {
	am.Play(c)
}

// LastCue 最近一次请求的提示音和请求总数
func (am *AudioManager) LastCue() (Cue, int) {
	return am.lastCue, am.played
}

func (am *AudioManager) currentVolume() float64 {
	if am.volume == nil {
		return 0.8
	}
	v := am.volume()
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
