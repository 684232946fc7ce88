package download

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"
	"github.com/vbauerster/mpb/v8"
)

func isHLS(resp *http.Response) bool {
	rawURL := strings.ToLower(resp.Request.URL.String())
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return strings.Contains(rawURL, ".m3u8") ||
		strings.Contains(contentType, "application/vnd.apple.mpegurl") ||
		strings.Contains(contentType, "application/x-mpegurl")
}

// downloadHLS walks the playlist behind resp and writes the concatenated
// segments to out. Master playlists are narrowed to their best variant
// first. Total size is estimated from segment durations as the stream
// progresses.
func (t *Tracker) downloadHLS(ctx context.Context, resp *http.Response, task *Task, out *os.File) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{URL: task.URL, Err: err}
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return fmt.Errorf("failed to decode playlist: %w", err)
	}

	var media *m3u8.MediaPlaylist
	playlistURL := resp.Request.URL

	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		variant := pickVariant(master.Variants)
		if variant == nil {
			return fmt.Errorf("no variants in master playlist")
		}

		variantURL, err := playlistURL.Parse(variant.URI)
		if err != nil {
			return fmt.Errorf("failed to parse variant URL: %w", err)
		}

		vResp, err := t.get(ctx, variantURL.String(), task.Referer)
		if err != nil {
			return &TransportError{URL: variantURL.String(), Err: err}
		}
		vPlaylist, vType, err := m3u8.DecodeFrom(vResp.Body, true)
		vResp.Body.Close()
		if err != nil || vType != m3u8.MEDIA {
			return fmt.Errorf("failed to decode media playlist: %w", err)
		}
		media = vPlaylist.(*m3u8.MediaPlaylist)
		playlistURL = variantURL

	case m3u8.MEDIA:
		media = playlist.(*m3u8.MediaPlaylist)

	default:
		return fmt.Errorf("unsupported playlist type")
	}

	return t.downloadSegments(ctx, media, playlistURL, task, out)
}

// pickVariant prefers the largest pixel area; variants without usable
// RESOLUTION attributes fall back to a bandwidth comparison. Ties keep the
// first-seen variant.
func pickVariant(variants []*m3u8.Variant) *m3u8.Variant {
	var best *m3u8.Variant
	bestArea := -1
	for _, v := range variants {
		if v == nil {
			continue
		}
		area := resolutionArea(v.Resolution)
		if area > bestArea {
			best = v
			bestArea = area
		}
	}
	if best != nil && bestArea > 0 {
		return best
	}

	for _, v := range variants {
		if v == nil {
			continue
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best
}

func resolutionArea(resolution string) int {
	w, h, ok := strings.Cut(strings.ToLower(resolution), "x")
	if !ok {
		return 0
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return width * height
}

func (t *Tracker) downloadSegments(ctx context.Context, media *m3u8.MediaPlaylist, base *url.URL, task *Task, out *os.File) error {
	var totalDuration float64
	for _, seg := range media.Segments {
		if seg == nil {
			break
		}
		totalDuration += seg.Duration
	}

	var bar *mpb.Bar
	if t.progress != nil {
		bar = t.addBar(task.label(), 0)
	}

	var (
		received           int64
		downloadedDuration float64
		key                *segmentKey
	)

	if media.Key != nil {
		k, err := t.fetchKey(ctx, media.Key, base, task.Referer)
		if err != nil {
			abortBar(bar)
			return err
		}
		key = k
	}

	for i, seg := range media.Segments {
		if seg == nil {
			break
		}

		if seg.Key != nil {
			k, err := t.fetchKey(ctx, seg.Key, base, task.Referer)
			if err != nil {
				abortBar(bar)
				return err
			}
			key = k
		}

		segURL, err := base.Parse(seg.URI)
		if err != nil {
			abortBar(bar)
			return fmt.Errorf("failed to parse segment URL: %w", err)
		}

		sResp, err := t.get(ctx, segURL.String(), task.Referer)
		if err != nil {
			abortBar(bar)
			return &TransportError{URL: segURL.String(), Err: err}
		}
		segBytes, err := io.ReadAll(sResp.Body)
		sResp.Body.Close()
		if err != nil {
			abortBar(bar)
			return &TransportError{URL: segURL.String(), Err: err}
		}

		if key != nil {
			iv := key.iv
			if iv == nil {
				// no EXT-X-KEY IV means the media sequence number is the IV
				iv = make([]byte, 16)
				binary.BigEndian.PutUint64(iv[8:], media.SeqNo+uint64(i))
			}
			segBytes, err = decryptAES128(segBytes, key.value, iv)
			if err != nil {
				abortBar(bar)
				return fmt.Errorf("failed to decrypt segment: %w", err)
			}
		}

		n, err := out.Write(segBytes)
		if err != nil {
			abortBar(bar)
			return fmt.Errorf("failed to write output file: %w", err)
		}
		received += int64(n)
		downloadedDuration += seg.Duration

		estimated := TotalUnknown
		if downloadedDuration > 0 && totalDuration > 0 {
			estimated = int64(float64(received) * totalDuration / downloadedDuration)
		}
		if bar != nil {
			bar.SetTotal(max(estimated, 0), false)
			bar.SetCurrent(received)
		}
		task.emit(received, estimated)
	}

	if bar != nil {
		bar.SetTotal(received, true)
		bar.SetCurrent(received)
	}
	task.emit(received, received)
	return nil
}

type segmentKey struct {
	value []byte
	iv    []byte
}

func (t *Tracker) fetchKey(ctx context.Context, key *m3u8.Key, base *url.URL, referer string) (*segmentKey, error) {
	if key.Method == "NONE" || key.Method == "" {
		return nil, nil
	}
	if key.Method != "AES-128" {
		return nil, fmt.Errorf("unsupported encryption method: %s", key.Method)
	}

	keyURL, err := base.Parse(key.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key URL: %w", err)
	}

	resp, err := t.get(ctx, keyURL.String(), referer)
	if err != nil {
		return nil, &TransportError{URL: keyURL.String(), Err: err}
	}
	value, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, &TransportError{URL: keyURL.String(), Err: err}
	}

	var iv []byte
	if key.IV != "" {
		iv, err = hex.DecodeString(strings.TrimPrefix(key.IV, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode key IV: %w", err)
		}
	}

	return &segmentKey{value: value, iv: iv}, nil
}

func decryptAES128(data, key, iv []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("segment length %d is not a cipher block multiple", len(data))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("bad IV length %d", len(iv))
	}

	decrypted := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(decrypted, data)
	return stripPKCS7(decrypted), nil
}

// stripPKCS7 removes trailing padding only when every padding byte agrees;
// anything else is unpadded data and stays untouched.
func stripPKCS7(data []byte) []byte {
	padding := int(data[len(data)-1])
	if padding < 1 || padding > aes.BlockSize || padding > len(data) {
		return data
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return data
		}
	}
	return data[:len(data)-padding]
}
