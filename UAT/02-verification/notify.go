// Package verification broadcasts notices, checked after the fact with verification blocks.
package verification

// Notifier delivers messages.
type Notifier interface {
	Send(to, msg string) error
	Flush()
}

// Broadcast sends msg to every user and flushes once. It returns the users a send failed for.
func Broadcast(n Notifier, users []string, msg string) []string {
	var failed []string

	for _, user := range users {
		if err := n.Send(user, msg); err != nil {
			failed = append(failed, user)
		}
	}

	n.Flush()

	return failed
}
