package hal

import "sync"

type txRecord struct {
	cmd   byte
	data  []byte
	color bool
}

// recordingIO captures every transaction sent to a panel.
type recordingIO struct {
	mu      sync.Mutex
	txs     []txRecord
	closed  bool
	err     error
	onClose func()
}

func (r *recordingIO) TxParam(cmd byte, params []byte) error {
	return r.record(cmd, params, false)
}

func (r *recordingIO) TxColor(cmd byte, colors []byte) error {
	return r.record(cmd, colors, true)
}

func (r *recordingIO) record(cmd byte, data []byte, color bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.txs = append(r.txs, txRecord{cmd: cmd, data: append([]byte(nil), data...), color: color})
	return nil
}

func (r *recordingIO) Close() error {
	r.mu.Lock()
	r.closed = true
	fn := r.onClose
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (r *recordingIO) cmds() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, len(r.txs))
	for i, tx := range r.txs {
		out[i] = tx.cmd
	}
	return out
}

type drawCall struct {
	x0, y0, x1, y1 int
	n              int
}

// fakePanel records draws and close order.
type fakePanel struct {
	draws   []drawCall
	closed  bool
	onClose func()
}

func (p *fakePanel) Reset() error           { return nil }
func (p *fakePanel) Init() error            { return nil }
func (p *fakePanel) InvertColor(bool) error { return nil }
func (p *fakePanel) SwapXY(bool) error      { return nil }
func (p *fakePanel) Mirror(_, _ bool) error { return nil }
func (p *fakePanel) DisplayOn(bool) error   { return nil }

func (p *fakePanel) DrawBitmap(x0, y0, x1, y1 int, data []byte) error {
	p.draws = append(p.draws, drawCall{x0, y0, x1, y1, len(data)})
	return nil
}

func (p *fakePanel) Close() error {
	p.closed = true
	if p.onClose != nil {
		p.onClose()
	}
	return nil
}
