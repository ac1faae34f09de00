// Package monitoring serves a JSON API that inspects and drives hooking
// entities while a program runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/hookr/hooking"
	"github.com/sarchlab/hookr/idgen"
)

// Monitor turns a program into a server that exposes its entities.
type Monitor struct {
	entities    []*hooking.Entity
	types       []*hooking.Type
	portNumber  int
	openBrowser bool
	url         string

	// dispatchLock serializes the raises issued through the API with the
	// raises of the program.
	dispatchLock sync.Mutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in a web browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEntity registers an entity to be monitored.
func (m *Monitor) RegisterEntity(e *hooking.Entity) {
	m.entities = append(m.entities, e)
}

// RegisterType registers a type to be monitored.
func (m *Monitor) RegisterType(t *hooking.Type) {
	m.types = append(m.types, t)
}

// Dispatch runs fn while no raise requested through the API is running.
// Programs that raise hooks on monitored entities should raise inside fn.
func (m *Monitor) Dispatch(fn func()) {
	m.dispatchLock.Lock()
	defer m.dispatchLock.Unlock()

	fn()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        idgen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_entities", m.listEntities)
	r.HandleFunc("/api/list_types", m.listTypes)
	r.HandleFunc("/api/entity/{name}", m.listEntityDetails)
	r.HandleFunc("/api/hooks/{name}", m.listHooks)
	r.HandleFunc("/api/raise/{name}/{hook}", m.raise).Methods(http.MethodPost)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring hooks with %s\n", m.url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	if m.openBrowser {
		err = browser.OpenURL(m.url + "/api/list_entities")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}
}

// URL returns the address of the server once it is started.
func (m *Monitor) URL() string {
	return m.url
}

func (m *Monitor) listEntities(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.entities))
	for _, e := range m.entities {
		names = append(names, e.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listTypes(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.types))
	for _, t := range m.types {
		names = append(names, t.Name())
	}

	writeJSON(w, names)
}

type entityView struct {
	Name      string
	Type      string
	OwnHooks  bool
	NumProbes int
	Hooks     []hooking.HookInfo
}

func (m *Monitor) listEntityDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	entity := m.findEntityOr404(w, name)
	if entity == nil {
		return
	}

	var view *entityView

	m.Dispatch(func() {
		view = &entityView{
			Name:      entity.Name(),
			Type:      entity.Type().Name(),
			OwnHooks:  entity.HasOwnHooks(),
			NumProbes: entity.NumProbes(),
			Hooks:     entity.Hooks(),
		}
	})

	serializer := goseth.NewSerializer()
	serializer.SetRoot(view)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) listHooks(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var hooks []hooking.HookInfo

	m.Dispatch(func() {
		for _, e := range m.entities {
			if e.Name() == name {
				hooks = e.Hooks()
				return
			}
		}

		for _, t := range m.types {
			if t.Name() == name {
				hooks = t.Hooks()
				return
			}
		}
	})

	if hooks == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Entity or type not found"))
		dieOnErr(err)

		return
	}

	writeJSON(w, hooks)
}

type raiseRsp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (m *Monitor) raise(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	entity := m.findEntityOr404(w, vars["name"])
	if entity == nil {
		return
	}

	var args []any
	if r.ContentLength != 0 {
		err := json.NewDecoder(r.Body).Decode(&args)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, raiseRsp{Error: err.Error()})

			return
		}
	}

	var err error

	m.Dispatch(func() {
		err = entity.Raise(vars["hook"], args...)
	})

	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(w, raiseRsp{Error: err.Error()})

		return
	}

	writeJSON(w, raiseRsp{OK: true})
}

func (m *Monitor) findEntityOr404(
	w http.ResponseWriter,
	name string,
) *hooking.Entity {
	for _, e := range m.entities {
		if e.Name() == name {
			return e
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Entity not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.view())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
