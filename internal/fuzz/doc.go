// Package fuzztests houses Go fuzz harnesses that exercise the compilation
// pipeline (source -> lexer -> parser -> tac -> cfg -> regalloc -> cpu). Its
// goal is to smoke test robustness and guard against panics or runaway
// loops on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через стадии компилятора.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
