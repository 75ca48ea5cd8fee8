package run

import (
	"time"

	"github.com/John-Robertt/emotax/internal/config"
	"github.com/John-Robertt/emotax/internal/domain"
)

// Observer 用于把“运行进度/阶段信息”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：fetch 阶段的事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnDone 在 run 结束时调用（成功与失败都会触发，report 已 Finalize）。
	OnDone(rr domain.RunReport)
}
