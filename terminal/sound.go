package terminal

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

const sampleRate = beep.SampleRate(44100)

// tone 是一个短促的音效
type tone struct {
	freq     float64
	duration time.Duration
}

var tones = map[structs.Event]tone{
	structs.EventMove:      {440, 30 * time.Millisecond},
	structs.EventRotate:    {660, 40 * time.Millisecond},
	structs.EventDrop:      {180, 80 * time.Millisecond},
	structs.EventLineClear: {880, 120 * time.Millisecond},
	structs.EventGameOver:  {110, 400 * time.Millisecond},
	structs.EventWin:       {1320, 400 * time.Millisecond},
}

func toneFor(event structs.Event) (tone, bool) {
	t, ok := tones[event]
	return t, ok
}

// SoundManager 播放背景音乐和游戏音效
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	music       *beep.Ctrl
	initialized bool

	musicStarted bool
	musicHalted  bool // 暂停、结束或通关时停止音乐
	musicMuted   bool
	sfxMuted     bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		music: &beep.Ctrl{Streamer: NewArpeggioGenerator(sampleRate), Paused: true},
	}
}

// Initialize 打开音频设备。失败时游戏照常运行，只是没有声音。
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	sm.mixer.Add(sm.music)
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// StartMusic 在第一次输入时开始播放背景音乐，之后的调用不再生效
func (sm *SoundManager) StartMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.musicStarted {
		return
	}
	sm.musicStarted = true
	sm.syncMusic()
}

// ToggleMusic 切换背景音乐静音，返回切换后是否静音
func (sm *SoundManager) ToggleMusic() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.musicMuted = !sm.musicMuted
	sm.syncMusic()
	return sm.musicMuted
}

// ToggleSfx 切换音效静音，返回切换后是否静音
func (sm *SoundManager) ToggleSfx() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.sfxMuted = !sm.sfxMuted
	return sm.sfxMuted
}

func (sm *SoundManager) MusicPlaying() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return !sm.music.Paused
}

// Handle 根据状态机事件播放音效并控制背景音乐
func (sm *SoundManager) Handle(events []structs.Event) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, event := range events {
		switch event {
		case structs.EventPause, structs.EventGameOver, structs.EventWin:
			sm.musicHalted = true
			sm.syncMusic()
		case structs.EventResume, structs.EventRestart:
			sm.musicHalted = false
			sm.syncMusic()
		}

		if t, ok := toneFor(event); ok && !sm.sfxMuted {
			sm.play(t)
		}
	}
}

func (sm *SoundManager) syncMusic() {
	paused := !sm.musicStarted || sm.musicHalted || sm.musicMuted
	if !sm.initialized {
		sm.music.Paused = paused
		return
	}
	speaker.Lock()
	sm.music.Paused = paused
	speaker.Unlock()
}

func (sm *SoundManager) play(t tone) {
	if !sm.initialized {
		return
	}
	sine, err := generators.SineTone(sampleRate, t.freq)
	if err != nil {
		return
	}
	streamer := &effects.Volume{
		Streamer: beep.Take(sampleRate.N(t.duration), sine),
		Base:     2,
		Volume:   -3,
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
}

// arpeggio 是背景音乐使用的音阶（A 小调）
var arpeggio = []float64{220.00, 261.63, 329.63, 392.00, 329.63, 261.63}

// ArpeggioGenerator 循环播放一段琶音，永不结束
type ArpeggioGenerator struct {
	sr      beep.SampleRate
	pos     int
	noteLen int
}

func NewArpeggioGenerator(sr beep.SampleRate) *ArpeggioGenerator {
	return &ArpeggioGenerator{
		sr:      sr,
		noteLen: sr.N(time.Millisecond * 250),
	}
}

func (g *ArpeggioGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		note := (g.pos / g.noteLen) % len(arpeggio)
		notePos := g.pos % g.noteLen
		t := float64(g.pos) / float64(g.sr)

		// 每个音符快速起音后指数衰减
		envelope := math.Exp(-float64(notePos) / float64(g.noteLen) * 4)
		sample := 0.08 * envelope * math.Sin(2*math.Pi*arpeggio[note]*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ArpeggioGenerator) Err() error {
	return nil
}
