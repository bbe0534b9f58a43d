// Command plex-meta-migrator copies locked metadata and playlists between
// two Plex Media Server libraries, joining items by media file name.
package main
