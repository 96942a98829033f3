package edgar

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// SyntheticPrefix 链接里找不到 accession number 时合成的兜底标识前缀。
// 带前缀是为了在库里一眼能认出来；该值含时间戳和随机数，同一条
// 异常 entry 重复抓取会生成不同的值，跨批次去重不能依赖它。
const SyntheticPrefix = "SYNTH-"

// TickerNA 公司名完全无法推出代码时的哨兵值
const TickerNA = "N/A"

var (
	accessionPattern = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)
	companyPattern   = regexp.MustCompile(`(.+?)\s*\(\d{7,10}\)`)
	parenPattern     = regexp.MustCompile(`\s*\([^)]*\)`)
)

// ErrEmptyEntry entry 缺少可用字段
var ErrEmptyEntry = errors.New("entry has no usable fields")

// Filing 从一条 feed entry 提取出的结构化申报信息
type Filing struct {
	AccessionNumber string
	CompanyName     string
	Ticker          string
	FiledDate       time.Time
	FilingURL       string
	Synthetic       bool // accession number 是合成的
}

// tickerTable 已知公司名到代码的查表，命中按大小写不敏感子串匹配。
// 只是尽力而为的补充信息，不保证准确。
var tickerTable = map[string]string{
	"apple":             "AAPL",
	"microsoft":         "MSFT",
	"nvidia":            "NVDA",
	"tesla":             "TSLA",
	"amazon":            "AMZN",
	"alphabet":          "GOOGL",
	"google":            "GOOGL",
	"meta platforms":    "META",
	"netflix":           "NFLX",
	"jpmorgan":          "JPM",
	"goldman sachs":     "GS",
	"bank of america":   "BAC",
	"berkshire":         "BRK.B",
	"exxon":             "XOM",
	"johnson & johnson": "JNJ",
	"pfizer":            "PFE",
	"intel":             "INTC",
	"advanced micro":    "AMD",
	"coca-cola":         "KO",
	"walmart":           "WMT",
}

// ExtractFiling 从一条 entry 启发式提取申报信息。
// 单条解析失败只影响这一条，调用方跳过并计数。
func ExtractFiling(entry Entry) (*Filing, error) {
	if strings.TrimSpace(entry.Title) == "" && strings.TrimSpace(entry.Summary) == "" {
		return nil, ErrEmptyEntry
	}

	filing := &Filing{
		FilingURL: entry.Link.Href,
	}

	filing.AccessionNumber = accessionPattern.FindString(entry.Link.Href)
	if filing.AccessionNumber == "" {
		filing.AccessionNumber = syntheticAccession()
		filing.Synthetic = true
	}

	filing.CompanyName = extractCompanyName(entry.Summary, entry.Title)
	filing.Ticker = LookupTicker(filing.CompanyName)

	filedDate, err := parseFiledDate(entry.Updated)
	if err != nil {
		return nil, fmt.Errorf("unparseable filed date %q: %w", entry.Updated, err)
	}
	filing.FiledDate = filedDate

	return filing, nil
}

// extractCompanyName 优先从 summary 的 "公司名 (CIK)" 模式取名，
// 取不到再从标题第一个分隔符后的片段去掉括号内容兜底
func extractCompanyName(summary, title string) string {
	if m := companyPattern.FindStringSubmatch(summary); m != nil {
		return strings.TrimSpace(m[1])
	}

	segment := title
	if idx := strings.Index(title, " - "); idx >= 0 {
		segment = title[idx+3:]
	}
	segment = parenPattern.ReplaceAllString(segment, "")
	return strings.TrimSpace(segment)
}

// LookupTicker 公司名推代码：先查表，查不到取第一个单词的前 4 个
// 字母大写，完全没有可用单词返回 "N/A"
func LookupTicker(companyName string) string {
	lower := strings.ToLower(companyName)
	for name, ticker := range tickerTable {
		if strings.Contains(lower, name) {
			return ticker
		}
	}

	fields := strings.Fields(companyName)
	if len(fields) == 0 {
		return TickerNA
	}

	var letters []rune
	for _, r := range fields[0] {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
	}
	if len(letters) == 0 {
		return TickerNA
	}
	if len(letters) > 4 {
		letters = letters[:4]
	}
	return string(letters)
}

func parseFiledDate(updated string) (time.Time, error) {
	updated = strings.TrimSpace(updated)
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", updated)
}

func syntheticAccession() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return fmt.Sprintf("%s%d-%s", SyntheticPrefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
