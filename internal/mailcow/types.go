// Package mailcow is a client for the mailcow management API.
package mailcow

// DomainRequest is the payload for creating a domain.
// Quota values are megabytes; rl_value/rl_frame is the outbound rate limit.
type DomainRequest struct {
	Domain             string `json:"domain"`
	Description        string `json:"description"`
	Aliases            int    `json:"aliases"`
	Mailboxes          int    `json:"mailboxes"`
	DefQuota           int    `json:"defquota"`
	MaxQuota           int    `json:"maxquota"`
	Quota              int    `json:"quota"`
	Active             int    `json:"active"`
	RateLimitValue     int    `json:"rl_value"`
	RateLimitFrame     string `json:"rl_frame"`
	BackupMX           int    `json:"backupmx"`
	RelayAllRecipients int    `json:"relay_all_recipients"`
}

// MailboxRequest is the payload for creating a mailbox.
type MailboxRequest struct {
	LocalPart     string `json:"local_part"`
	Domain        string `json:"domain"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	Password2     string `json:"password2"`
	Quota         int    `json:"quota"`
	Active        int    `json:"active"`
	ForcePwUpdate int    `json:"force_pw_update"`
	TLSEnforceIn  int    `json:"tls_enforce_in"`
	TLSEnforceOut int    `json:"tls_enforce_out"`
}

// APIResult is one element of the array mailcow returns for write calls.
// Msg may be a string or an array of strings depending on the endpoint.
type APIResult struct {
	Type string      `json:"type"`
	Msg  interface{} `json:"msg"`
}

// DKIMInfo describes a domain's DKIM key pair as returned by the API.
type DKIMInfo struct {
	PubKey   string `json:"pubkey"`
	Selector string `json:"dkim_selector"`
	Length   string `json:"length"`
}
