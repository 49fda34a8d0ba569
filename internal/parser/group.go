package parser

import "strings"

// isExternalChannel reports whether a block header marks an external data
// channel: any key case-insensitively containing the indicator phrase.
func isExternalChannel(header HeaderMap) bool {
	for key := range header {
		if strings.Contains(strings.ToLower(key), externalChannelIndicator) {
			return true
		}
	}
	return false
}

// groupSpectra partitions blocks into spectrum groups. A primary block
// starts a new group; every following external block joins the open group.
// An external block before any primary block has no group to join and is a
// hard error.
func groupSpectra(blocks []*DataBlock) ([]SpectrumGroup, error) {
	var groups []SpectrumGroup

	for _, block := range blocks {
		if isExternalChannel(block.Header) {
			block.Type = ChannelExternal
			if len(groups) == 0 {
				return nil, &OrphanExternalChannelError{Line: block.Line}
			}
			groups[len(groups)-1] = append(groups[len(groups)-1], block)
			continue
		}
		block.Type = ChannelPrimary
		groups = append(groups, SpectrumGroup{block})
	}

	return groups, nil
}
