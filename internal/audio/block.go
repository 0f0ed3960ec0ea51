package audio

// BlockFrames is the number of stereo frames in a full PCM block.
// The final block of a stream may be shorter.
const BlockFrames = 1024

// Format describes the PCM layout a session produces
type Format struct {
	SampleRate int
	Channels   int
}

// Block is a chunk of decoded frames. Pos is the stream offset of the first
// frame; epoch tags the seek generation it was decoded in.
type Block struct {
	Samples  [][2]float64
	Channels int
	Pos      int
	epoch    uint64
}

// Frames returns the number of frames in the block
func (b *Block) Frames() int {
	return len(b.Samples)
}
