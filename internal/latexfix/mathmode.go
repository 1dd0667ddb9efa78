package latexfix

// fixMathModeEscape 数学模式转义遍。
// 预留给正文中未转义下划线（如 model_name）的检测，目前不做任何改写：
// 可靠区分"该转义的下划线"和"该进数学模式的变量名"需要更多上下文，
// 在启发式可靠之前这一遍保持空操作。
func (e *Engine) fixMathModeEscape(text string) (string, []*Fix) {
	return text, nil
}
