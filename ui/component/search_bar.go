package component

import (
	"regexp"

	"fyne.io/fyne/v2/widget"
)

// SearchBar 搜索框组件，输入按正则匹配记录
type SearchBar struct {
	*widget.Entry
	onSearch func(string) // 搜索回调函数
}

// NewSearchBar 创建搜索框
func NewSearchBar(onSearch func(string)) *SearchBar {
	search := &SearchBar{
		Entry:    widget.NewEntry(),
		onSearch: onSearch,
	}

	search.SetPlaceHolder("搜索记录，支持正则...")
	search.Validator = validatePattern
	search.OnChanged = search.handleSearch

	return search
}

// 处理搜索
func (s *SearchBar) handleSearch(text string) {
	if s.onSearch != nil {
		s.onSearch(text)
	}
}

// 无效正则只提示，不影响搜索结果
func validatePattern(text string) error {
	_, err := regexp.Compile(text)
	return err
}
