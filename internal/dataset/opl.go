package dataset

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paulmach/osm"
)

// OPL is osmium's line based OSM format. Every line holds one object: the
// first field is the type letter and id, every following field is a one
// letter key directly followed by its value.

// scanOPL is the OPL counterpart of scanXML
func scanOPL(ctx context.Context, path string, fn func(osm.Object) error) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		object, err := ParseOPL(text)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if object == nil {
			continue
		}
		if err := fn(object); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}

	return nil
}

// ParseOPL decodes a single OPL line into a node, way or relation.
// Changesets and nodes without a location decode to nil.
func ParseOPL(line string) (osm.Object, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) < 2 {
		return nil, fmt.Errorf("%w: missing object id", ErrMalformedOPL)
	}

	kind := fields[0][0]
	id, err := strconv.ParseInt(fields[0][1:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: object id %q", ErrMalformedOPL, fields[0])
	}

	var (
		meta     oplMeta
		tags     osm.Tags
		lon, lat string
		nodes    osm.WayNodes
		members  osm.Members
	)
	meta.visible = true

	for _, field := range fields[1:] {
		value := field[1:]
		switch field[0] {
		case 'v':
			meta.version, err = parseOPLInt(value)
		case 'd':
			meta.visible = value != "D"
		case 'c':
			meta.changeset, err = parseOPLInt64(value)
		case 't':
			if value != "" {
				meta.timestamp, err = time.Parse(time.RFC3339, value)
			}
		case 'i':
			meta.uid, err = parseOPLInt64(value)
		case 'u':
			meta.user, err = oplUnescape(value)
		case 'T':
			tags, err = parseOPLTags(value)
		case 'x':
			lon = value
		case 'y':
			lat = value
		case 'N':
			nodes, err = parseOPLWayNodes(value)
		case 'M':
			members, err = parseOPLMembers(value)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrMalformedOPL, field, err)
		}
	}

	switch kind {
	case 'n':
		if lon == "" || lat == "" {
			return nil, nil
		}
		node := &osm.Node{
			ID:          osm.NodeID(id),
			User:        meta.user,
			UserID:      osm.UserID(meta.uid),
			Visible:     meta.visible,
			Version:     meta.version,
			ChangesetID: osm.ChangesetID(meta.changeset),
			Timestamp:   meta.timestamp,
			Tags:        tags,
		}
		if node.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
			return nil, fmt.Errorf("%w: x %q", ErrMalformedOPL, lon)
		}
		if node.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
			return nil, fmt.Errorf("%w: y %q", ErrMalformedOPL, lat)
		}
		return node, nil
	case 'w':
		return &osm.Way{
			ID:          osm.WayID(id),
			User:        meta.user,
			UserID:      osm.UserID(meta.uid),
			Visible:     meta.visible,
			Version:     meta.version,
			ChangesetID: osm.ChangesetID(meta.changeset),
			Timestamp:   meta.timestamp,
			Nodes:       nodes,
			Tags:        tags,
		}, nil
	case 'r':
		return &osm.Relation{
			ID:          osm.RelationID(id),
			User:        meta.user,
			UserID:      osm.UserID(meta.uid),
			Visible:     meta.visible,
			Version:     meta.version,
			ChangesetID: osm.ChangesetID(meta.changeset),
			Timestamp:   meta.timestamp,
			Members:     members,
			Tags:        tags,
		}, nil
	case 'c':
		return nil, nil
	}

	return nil, fmt.Errorf("%w: unknown object type %q", ErrMalformedOPL, string(kind))
}

// FormatOPLNode encodes a node as one OPL line without the trailing newline
func FormatOPLNode(n *osm.Node) string {
	var b strings.Builder

	visible := "V"
	if !n.Visible {
		visible = "D"
	}
	timestamp := ""
	if !n.Timestamp.IsZero() {
		timestamp = n.Timestamp.UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(&b, "n%d v%d d%s c%d t%s i%d u%s T",
		n.ID, n.Version, visible, n.ChangesetID, timestamp, n.UserID, oplEscape(n.User))
	for i, tag := range n.Tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(oplEscape(tag.Key))
		b.WriteByte('=')
		b.WriteString(oplEscape(tag.Value))
	}
	fmt.Fprintf(&b, " x%s y%s",
		strconv.FormatFloat(n.Lon, 'f', -1, 64),
		strconv.FormatFloat(n.Lat, 'f', -1, 64))

	return b.String()
}

type oplMeta struct {
	version   int
	visible   bool
	changeset int64
	timestamp time.Time
	uid       int64
	user      string
}

func parseOPLInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseOPLInt64(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

func parseOPLTags(value string) (osm.Tags, error) {
	if value == "" {
		return nil, nil
	}

	var tags osm.Tags
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("tag %q has no value", pair)
		}
		key, err := oplUnescape(k)
		if err != nil {
			return nil, err
		}
		val, err := oplUnescape(v)
		if err != nil {
			return nil, err
		}
		tags = append(tags, osm.Tag{Key: key, Value: val})
	}
	return tags, nil
}

func parseOPLWayNodes(value string) (osm.WayNodes, error) {
	if value == "" {
		return nil, nil
	}

	var nodes osm.WayNodes
	for _, ref := range strings.Split(value, ",") {
		if !strings.HasPrefix(ref, "n") {
			return nil, fmt.Errorf("node reference %q", ref)
		}
		// A location may follow the id as "n1x9.5y53.1"
		digits := ref[1:]
		if i := strings.IndexByte(digits, 'x'); i >= 0 {
			digits = digits[:i]
		}
		id, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("node reference %q", ref)
		}
		nodes = append(nodes, osm.WayNode{ID: osm.NodeID(id)})
	}
	return nodes, nil
}

func parseOPLMembers(value string) (osm.Members, error) {
	if value == "" {
		return nil, nil
	}

	var members osm.Members
	for _, entry := range strings.Split(value, ",") {
		ref, role, _ := strings.Cut(entry, "@")
		if len(ref) < 2 {
			return nil, fmt.Errorf("member %q", entry)
		}

		var memberType osm.Type
		switch ref[0] {
		case 'n':
			memberType = osm.TypeNode
		case 'w':
			memberType = osm.TypeWay
		case 'r':
			memberType = osm.TypeRelation
		default:
			return nil, fmt.Errorf("member %q", entry)
		}

		id, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("member %q", entry)
		}
		role, err = oplUnescape(role)
		if err != nil {
			return nil, err
		}
		members = append(members, osm.Member{Type: memberType, Ref: id, Role: role})
	}
	return members, nil
}

// oplUnescape resolves %hex% sequences into the code point they name
func oplUnescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	var b strings.Builder
	for {
		start := strings.IndexByte(s, '%')
		if start < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:start])

		end := strings.IndexByte(s[start+1:], '%')
		if end < 0 {
			return "", fmt.Errorf("unterminated escape in %q", s)
		}
		code, err := strconv.ParseUint(s[start+1:start+1+end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(code)) {
			return "", fmt.Errorf("invalid escape %q", s[start:start+end+2])
		}
		b.WriteRune(rune(code))
		s = s[start+end+2:]
	}
}

// oplEscape keeps the code points osmium writes verbatim and escapes the rest
func oplEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if oplVerbatim(r) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, "%%%x%%", r)
	}
	return b.String()
}

func oplVerbatim(r rune) bool {
	switch {
	case r == ' ', r == ',', r == '=', r == '@', r == '%':
		return false
	case r >= 0x21 && r <= 0x7e:
		return true
	case r >= 0xa1 && r <= 0xac:
		return true
	case r >= 0xae && r <= 0x05ff:
		return true
	}
	return false
}
