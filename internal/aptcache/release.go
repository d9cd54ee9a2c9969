package aptcache

import (
	"bytes"
	"io/fs"
	"path"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// releaseInfo is the slice of a Release file this tool cares about.
type releaseInfo struct {
	Suite                string
	Codename             string
	Origin               string
	Label                string
	NotAutomatic         bool
	ButAutomaticUpgrades bool
}

// loadRelease reads the InRelease or Release file sharing an index's
// name prefix. Missing metadata is normal for third-party
// repositories and leaves every field empty.
func loadRelease(fsys fs.FS, dir, prefix string) releaseInfo {
	for _, name := range []string{prefix + "InRelease", prefix + "Release"} {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			continue
		}
		return parseRelease(data)
	}
	return releaseInfo{}
}

func parseRelease(data []byte) releaseInfo {
	sc := newStanzaScanner(bytes.NewReader(clearsignBody(data)))
	st, err := sc.Next()
	if err != nil {
		return releaseInfo{}
	}
	yes := func(field string) bool { return strings.EqualFold(st[field], "yes") }
	return releaseInfo{
		Suite:                st["suite"],
		Codename:             st["codename"],
		Origin:               st["origin"],
		Label:                st["label"],
		NotAutomatic:         yes("notautomatic"),
		ButAutomaticUpgrades: yes("butautomaticupgrades"),
	}
}

// clearsignBody strips the OpenPGP clearsign armor from an InRelease
// document. Plain documents pass through untouched. Verification is
// the acquirer's job, not ours; only the envelope is decoded.
func clearsignBody(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("-----BEGIN PGP SIGNED MESSAGE-----")) {
		return data
	}
	block, _ := clearsign.Decode(data)
	if block == nil {
		return nil
	}
	return block.Plaintext
}
