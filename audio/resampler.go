package audio

// rateControlDelta bounds how far the adaptive ratio may drift from the
// module's original rate ratio, in either direction, as the FIFO
// approaches empty or full.
const rateControlDelta = 0.005

// Resampler converts interleaved stereo int16 samples produced by a
// module at its native rate into the host's output rate, nudging the
// output rate by a small adaptive factor so the FIFO it feeds neither
// starves nor overflows under minor timing drift between the module's
// frame clock and the host's audio clock.
type Resampler struct {
	fifo *FIFO

	coreRate     float64
	hostRate     float64
	originalRatio float64
	currentRatio  float64

	// carry holds the last input frame (left, right) across calls so
	// interpolation is continuous between batches.
	haveCarry bool
	carryL    int16
	carryR    int16
	// pos is the fractional read position into the *next* input batch,
	// carried over so a batch boundary never introduces a sampling
	// discontinuity.
	pos float64
}

// NewResampler creates a resampler for a module that produces audio at
// coreRate, feeding fifo at hostRate (scaled by the adaptive ratio).
func NewResampler(fifo *FIFO, coreRate, hostRate float64) *Resampler {
	ratio := hostRate / coreRate
	return &Resampler{
		fifo:          fifo,
		coreRate:      coreRate,
		hostRate:      hostRate,
		originalRatio: ratio,
		currentRatio:  ratio,
	}
}

// OriginalRatio returns hostRate/coreRate as fixed at construction.
func (r *Resampler) OriginalRatio() float64 {
	return r.originalRatio
}

// CurrentRatio returns the most recently computed adaptive ratio.
func (r *Resampler) CurrentRatio() float64 {
	return r.currentRatio
}

// updateRatio recomputes currentRatio from the FIFO's current free
// space: more free space than half capacity means the consumer is
// draining faster than average, so direction is positive and the ratio
// widens, resampling more output per input sample to refill the FIFO
// faster; less free space than half narrows it to slow output down.
func (r *Resampler) updateRatio() float64 {
	avail := float64(r.fifo.Free())
	halfSize := float64(r.fifo.Size()) / 2
	direction := (avail - halfSize) / halfSize
	r.currentRatio = r.originalRatio * (1 + rateControlDelta*direction)
	return direction
}

// Submit resamples an interleaved stereo int16 batch (L,R,L,R,...) at
// coreRate and writes the result into the FIFO at the current adaptive
// rate, truncating to an even sample count and to whatever free space
// the FIFO has left.
func (r *Resampler) Submit(frames []int16) {
	r.updateRatio()

	numFrames := len(frames) / 2
	if numFrames == 0 {
		return
	}

	outRate := r.hostRate * r.currentRatio / r.originalRatio
	step := r.coreRate / outRate

	out := make([]int16, 0, int(float64(numFrames)/step)*2+2)

	prevL, prevR := r.carryL, r.carryR
	if !r.haveCarry {
		prevL, prevR = frames[0], frames[1]
	}

	pos := r.pos
	for {
		idx := int(pos)
		if idx >= numFrames {
			break
		}
		frac := pos - float64(idx)

		var l0, r0 int16
		if idx == 0 {
			l0, r0 = prevL, prevR
		} else {
			l0, r0 = frames[2*(idx-1)], frames[2*(idx-1)+1]
		}
		l1, r1 := frames[2*idx], frames[2*idx+1]

		l := int16(float64(l0) + (float64(l1)-float64(l0))*frac)
		rr := int16(float64(r0) + (float64(r1)-float64(r0))*frac)
		out = append(out, l, rr)

		pos += step
	}
	r.pos = pos - float64(numFrames)
	r.carryL, r.carryR = frames[2*(numFrames-1)], frames[2*(numFrames-1)+1]
	r.haveCarry = true

	if len(out)%2 != 0 {
		out = out[:len(out)-1]
	}

	outBytes := make([]byte, len(out)*2)
	for i, s := range out {
		outBytes[2*i] = byte(s)
		outBytes[2*i+1] = byte(s >> 8)
	}

	free := r.fifo.Free()
	if free%2 != 0 {
		free--
	}
	if len(outBytes) > free {
		outBytes = outBytes[:free]
	}
	r.fifo.Write(outBytes)
}

// Reset clears interpolation state (carried samples and fractional
// position); call after a module reset or a core rate change.
func (r *Resampler) Reset(coreRate float64) {
	r.coreRate = coreRate
	r.originalRatio = r.hostRate / coreRate
	r.currentRatio = r.originalRatio
	r.haveCarry = false
	r.pos = 0
}
