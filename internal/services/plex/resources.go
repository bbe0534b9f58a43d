package plex

import (
	"strconv"
	"strings"
)

type resourceList struct {
	Resources []Resource `xml:"resource"`
}

// Resource is one entry from the plex.tv resources listing.
type Resource struct {
	Name             string               `xml:"name,attr"`
	AccessToken      string               `xml:"accessToken,attr"`
	ClientIdentifier string               `xml:"clientIdentifier,attr"`
	Provides         string               `xml:"provides,attr"`
	Connections      []ResourceConnection `xml:"connections>connection"`
}

// BestConnection returns the most direct usable endpoint for the resource,
// or an empty string when none of its connections are usable.
func (r Resource) BestConnection() string {
	return selectBestConnection(r.Connections)
}

// ResourceConnection is one way of reaching a resource.
type ResourceConnection struct {
	URI      string `xml:"uri,attr"`
	Protocol string `xml:"protocol,attr"`
	Local    string `xml:"local,attr"`
	Relay    string `xml:"relay,attr"`
	Address  string `xml:"address,attr"`
	Port     string `xml:"port,attr"`
}

// selectBestConnection scores each connection and returns the most direct
// one. HTTPS and plex.direct hostnames win, relay connections lose. Any
// connection with a URI is usable; scoring only ranks them.
func selectBestConnection(connections []ResourceConnection) string {
	found := false
	bestScore := 0
	bestURL := ""
	for _, conn := range connections {
		uri := strings.TrimSpace(conn.URI)
		if uri == "" {
			continue
		}
		protocol := strings.ToLower(strings.TrimSpace(conn.Protocol))
		score := 0
		if protocol == "https" {
			score += 50
		} else if protocol != "" {
			score -= 10
		}

		if strings.Contains(uri, ".plex.direct") {
			score += 30
		}

		if parseBool(conn.Local) {
			score += 5
		}
		if parseBool(conn.Relay) {
			score -= 5
		}

		if !found || score > bestScore {
			found = true
			bestScore = score
			bestURL = strings.TrimRight(uri, "/")
		}
	}
	return bestURL
}

func parseBool(value string) bool {
	if value == "" {
		return false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}
