// Package bind keeps a BIND9 name server in sync with the provisioned mail
// domains: one db.<domain> zone file per domain, one shared master zone list,
// and a live daemon that gets reloaded after every change.
package bind

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// zoneExpire is the SOA expire value. Unlike refresh/retry/negative-cache
// it does not follow the configured TTL.
const zoneExpire = 604800

const zoneFileTemplate = `$TTL    {{.TTL}}
@       IN      SOA     ns1.{{.NSBase}}. admin.{{.Domain}}. (
                     {{.Serial}}           ; Serial (timestamp)
                         {{.TTL}}         ; Refresh
                         {{.TTL}}         ; Retry
                         {{.Expire}}             ; Expire
                         {{.TTL}} )       ; Negative Cache TTL

; Name servers
@       IN      NS      ns1.{{.NSBase}}.
@       IN      NS      ns2.{{.NSBase}}.

; Mail server
@       IN      A       {{.ServerIP}}
mail    IN      A       {{.ServerIP}}
@       IN      MX      10      mail.{{.Domain}}.

; Auto-discovery for mail clients
autodiscover    IN      CNAME   mail
autoconfig      IN      CNAME   mail

; SPF Record
@       IN      TXT     "v=spf1 ip4:{{.ServerIP}} mx ~all"

; DMARC Record
_dmarc  IN      TXT     "v=DMARC1; p=quarantine; rua=mailto:dmarc@{{.Domain}}; ruf=mailto:dmarc@{{.Domain}}; fo=1"
{{- if .SigningKey}}

; DKIM Record
dkim._domainkey IN      TXT     "v=DKIM1; k=rsa; p={{.SigningKey}}"
{{- end}}
`

var zoneTmpl = template.Must(template.New("zone").Parse(zoneFileTemplate))

// zoneData is the template input for one domain's zone file.
type zoneData struct {
	Domain     string
	NSBase     string
	ServerIP   string
	SigningKey string
	TTL        int
	Serial     uint32
	Expire     int
}

func renderZone(data zoneData) (string, error) {
	var b strings.Builder
	data.Expire = zoneExpire
	if err := zoneTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render zone template: %w", err)
	}
	return b.String(), nil
}

var pemMarkerRe = regexp.MustCompile(`-----[A-Z ]+-----`)

// CleanSigningKey strips PEM header/footer lines and all whitespace from
// DKIM key material so it can be embedded in a TXT record value.
func CleanSigningKey(key string) string {
	key = pemMarkerRe.ReplaceAllString(key, "")
	return strings.Join(strings.Fields(key), "")
}

// nextSerial derives a zone serial from the current time, bumping past
// prev so a rewrite within the same second still increases the serial.
// Unix seconds stay 32-bit safe well past this software's lifetime.
func nextSerial(prev uint32, now time.Time) uint32 {
	serial := uint32(now.Unix())
	if prev >= serial {
		serial = prev + 1
	}
	return serial
}

// readSerial extracts the serial from an existing zone file, identified by
// the "; Serial" comment the template emits. Returns false if the file does
// not exist or carries no parseable serial.
func readSerial(path string) (uint32, bool) {
	file, err := os.Open(path) //nolint:gosec // path is derived from config
	if err != nil {
		return 0, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "; Serial") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		serial, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			continue
		}
		return uint32(serial), true
	}
	return 0, false
}
