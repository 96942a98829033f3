package edgar

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Feed browse-edgar 返回的 atom 文档
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Title   string   `xml:"title"`
	Entries []Entry  `xml:"entry"`
}

// Entry feed 中的一条申报
type Entry struct {
	Title   string `xml:"title"`
	Link    Link   `xml:"link"`
	Summary string `xml:"summary"`
	Updated string `xml:"updated"`
}

type Link struct {
	Href string `xml:"href,attr"`
}

// ParseFeed 解析一页 atom feed
func ParseFeed(data []byte) (*Feed, error) {
	var feed Feed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse atom feed: %w", err)
	}
	return &feed, nil
}

// Form4Entries 只保留 Form 4 原始申报，4/A 修正件不算
func (f *Feed) Form4Entries() []Entry {
	var entries []Entry
	for _, e := range f.Entries {
		if IsForm4Title(e.Title) {
			entries = append(entries, e)
		}
	}
	return entries
}

// IsForm4Title 判断 entry 标题是否为 Form 4 申报。
// 两种 feed 的标题格式分别是 "4 - Apple Inc (0000320193) (Issuer)" 和 "4 "。
func IsForm4Title(title string) bool {
	t := strings.TrimSpace(title)
	if strings.HasPrefix(t, "4/A") {
		return false
	}
	return t == "4" || strings.HasPrefix(t, "4 ")
}
