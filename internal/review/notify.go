package review

import "knipclean/internal/model"

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(model.Notice)

func (f NotifierFunc) Notify(n model.Notice) { f(n) }

// Quiet drops informational notices unless show is set. Warnings and errors
// always pass.
func Quiet(n Notifier, show bool) Notifier {
	if show {
		return n
	}
	return NotifierFunc(func(notice model.Notice) {
		if notice.Level != model.LevelInfo {
			n.Notify(notice)
		}
	})
}
