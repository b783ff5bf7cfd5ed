package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SyncUserMessage]         = (*SyncUserCommand)(nil)
	_ gocmd.Commander[DistributeResyncMessage] = (*DistributeResyncCommand)(nil)
	_ gocmd.Commander[WeeklyResyncMessage]     = (*WeeklyResyncCommand)(nil)
	_ gocmd.Commander[AttachWebhookMessage]    = (*AttachWebhookCommand)(nil)
)
