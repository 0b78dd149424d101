package tool

import "context"

type userWaitKey struct{}

// WithUserWait returns a context whose tools can report that they are blocked on a person.
// pause is called when such a wait starts and returns the function that ends it.
func WithUserWait(ctx context.Context, pause func() (resume func())) context.Context {
	return context.WithValue(ctx, userWaitKey{}, pause)
}

// AwaitUser marks the start of a wait on a person, such as a question to the user.
// Time spent until the returned function is called does not count against the turn deadline.
func AwaitUser(ctx context.Context) (resume func()) {
	if pause, ok := ctx.Value(userWaitKey{}).(func() func()); ok {
		return pause()
	}
	return func() {}
}
