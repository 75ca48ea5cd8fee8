package domain

import (
	"encoding/json"
	"time"
)

const (
	// ErrCodeFetchFailed 表示网络/传输错误或非 2xx 状态码。
	ErrCodeFetchFailed = "fetch_failed"
	// ErrCodeParseFailed 表示源数据无法解析（格式漂移/拿到了非预期内容）。
	ErrCodeParseFailed = "parse_failed"
	// ErrCodeBadRecord 表示参考清单出现了三种记录之外的形态（格式变更信号）。
	ErrCodeBadRecord = "bad_record"
	// ErrCodeUncategorized 表示存在声称是标准 emoji 但从未被参考清单匹配到的 shortcode。
	ErrCodeUncategorized = "uncategorized_shortcodes"
	// ErrCodeIOFailed 表示本地读写失败。
	ErrCodeIOFailed = "io_failed"
	// ErrCodeConfigInvalid 表示配置不合法。
	ErrCodeConfigInvalid = "config_invalid"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
//
// 约束：一次 run 要么产出完整 taxonomy（Errors 为空），要么只产出错误条目；
// 不存在“部分成功”的中间态。
type RunReport struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// SourceUsed 是最终成功的参考清单 provider（plain/chart）；失败时为空。
	SourceUsed string `json:"source_used"`

	Summary ReportSummary `json:"summary"`
	Errors  []ErrorItem   `json:"errors"`
}

type ReportSummary struct {
	Shortcodes    int `json:"shortcodes"`
	Custom        int `json:"custom"`
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
	Groups        int `json:"groups"`
}

type ErrorItem struct {
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	// Shortcodes 仅在 uncategorized_shortcodes 时非空（已排序，保证稳定）。
	Shortcodes []string `json:"shortcodes"`
}

// OK 表示本次 run 是否完整成功。
func (r *RunReport) OK() bool { return len(r.Errors) == 0 }

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) 把 nil slice 归一为空 slice（JSON 输出 [] 而不是 null）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Errors == nil {
		r.Errors = []ErrorItem{}
	}
	for i := range r.Errors {
		if r.Errors[i].Shortcodes == nil {
			r.Errors[i].Shortcodes = []string{}
		}
	}
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
