// Package chat is the client side of chatgate: a conversation store with
// versioned persistence, and a Sender that streams replies from the
// gateway into it.
//
// A Store is built explicitly and owns its state; every mutation runs
// under one write lock and is persisted before the call returns.
//
//	st := chat.NewStore(chat.WithPersistence(fileStore), chat.WithEncryptor(enc))
//	if err := st.Load(ctx); err != nil { ... }
//	sender, err := chat.NewSender(st, "http://localhost:8080", log)
//	reply, err := sender.Send(ctx, "Hello")
package chat
