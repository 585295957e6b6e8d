package chart

import "sync"

// Instance is a chart recorded by Recorder.
type Instance struct {
	ID     int
	Target string
	Config Config

	rec       *Recorder
	destroyed bool
}

// Destroy releases the instance.
func (i *Instance) Destroy() {
	i.rec.mu.Lock()
	defer i.rec.mu.Unlock()
	if i.destroyed {
		return
	}
	i.destroyed = true
	delete(i.rec.active, i.ID)
}

// Recorder is a Library that keeps instances in memory. The server uses it to
// ship configurations to the browser, which owns the real drawing surfaces.
type Recorder struct {
	mu      sync.Mutex
	nextID  int
	created int
	active  map[int]*Instance
}

func NewRecorder() *Recorder {
	return &Recorder{active: make(map[int]*Instance)}
}

func (r *Recorder) New(target string, cfg Config) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.created++
	inst := &Instance{ID: r.nextID, Target: target, Config: cfg, rec: r}
	r.active[inst.ID] = inst
	return inst, nil
}

// Active returns the number of instances not yet destroyed.
func (r *Recorder) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Created returns the number of instances ever constructed.
func (r *Recorder) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// ActiveOn returns the live instances bound to target.
func (r *Recorder) ActiveOn(target string) []*Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Instance
	for _, inst := range r.active {
		if inst.Target == target {
			out = append(out, inst)
		}
	}
	return out
}
