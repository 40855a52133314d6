package lexer

// skipTrivia пропускает пробелы, табы, переводы строк и // комментарии.
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\n', '\r':
			lx.cursor.Bump()
			continue
		case '/':
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '/' && b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
		}
		return
	}
}
