package service

import (
	"VaultNote/internal/crypto"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// linkPrefix — путь ссылки для получателя: <server>/n/<id>#<key>.
const linkPrefix = "/n/"

var ErrInvalidLink = errors.New("invalid note link")

// Link — разобранная ссылка на заметку.
type Link struct {
	Server string // схема и хост (с префиксом пути, если сервер не в корне)
	ID     string
	Key    []byte // nil для заметок под паролем
}

// BuildLink собирает ссылку. Ключ кладётся во фрагмент и до сервера не доходит.
func BuildLink(server, id string, key []byte) (string, error) {
	link := strings.TrimRight(server, "/") + linkPrefix + url.PathEscape(id)
	if key == nil {
		return link, nil
	}
	frag, err := crypto.ExportKey(key)
	if err != nil {
		return "", err
	}
	return link + "#" + frag, nil
}

// ParseLink разбирает ссылку вида <server>/n/<id>[#<key>].
// Голый id тоже принимается, тогда Server пустой.
func ParseLink(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Link{}, ErrInvalidLink
	}
	if !strings.Contains(raw, "/") {
		id, frag, _ := strings.Cut(raw, "#")
		return linkWithKey(Link{ID: id}, frag)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Link{}, fmt.Errorf("%w: server is missing", ErrInvalidLink)
	}
	i := strings.LastIndex(u.Path, linkPrefix)
	if i < 0 {
		return Link{}, fmt.Errorf("%w: expected %s<id>", ErrInvalidLink, linkPrefix)
	}
	id := strings.Trim(u.Path[i+len(linkPrefix):], "/")
	if id == "" {
		return Link{}, fmt.Errorf("%w: id is missing", ErrInvalidLink)
	}
	l := Link{Server: u.Scheme + "://" + u.Host + u.Path[:i], ID: id}
	return linkWithKey(l, u.Fragment)
}

func linkWithKey(l Link, frag string) (Link, error) {
	if l.ID == "" {
		return Link{}, ErrInvalidLink
	}
	if frag == "" {
		return l, nil
	}
	key, err := crypto.ImportKey(frag)
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	l.Key = key
	return l, nil
}
