// Package monitoring turns a running simulation into a web server that shows
// the devices and lets a user pause and continue the engine.
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
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/monitoring/web"
	"github.com/sarchlab/ethersim/sim"
)

// A DeviceSource lists the devices to monitor.
type DeviceSource interface {
	Devices() []device.Device
	Device(name string) (device.Device, bool)
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine     sim.Engine
	source     DeviceSource
	portNumber int
	listener   net.Listener

	pauseLock  sync.Mutex
	userPaused bool

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

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterDevices sets where the monitor finds devices.
func (m *Monitor) RegisterDevices(s DeviceSource) {
	m.source = s
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
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

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_devices", m.listDevices)
	r.HandleFunc("/api/device/{name}", m.deviceDetails)
	r.HandleFunc("/api/field/{json}", m.fieldValue)
	r.HandleFunc("/api/switch/{name}/table", m.switchTable)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.router()

	go func() {
		err := http.Serve(listener, r)
		if err != nil && !strings.Contains(err.Error(), "use of closed") {
			dieOnErr(err)
		}
	}()

	return url
}

// Close stops the server.
func (m *Monitor) Close() error {
	if m.listener == nil {
		return nil
	}

	err := m.listener.Close()
	m.listener = nil

	return err
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if !m.userPaused {
		m.engine.Pause()
		m.userPaused = true
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if m.userPaused {
		m.engine.Continue()
		m.userPaused = false
	}

	_, err := w.Write(nil)
	dieOnErr(err)
}

// frozen runs f with the engine paused between events, so device state does
// not change while it is read.
func (m *Monitor) frozen(f func()) {
	m.pauseLock.Lock()
	defer m.pauseLock.Unlock()

	if !m.userPaused {
		m.engine.Pause()
		defer m.engine.Continue()
	}

	f()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

type deviceEntry struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Ports int    `json:"ports"`
}

func kindOf(d device.Device) string {
	switch d.(type) {
	case *device.Host:
		return "host"
	case *device.Hub:
		return "hub"
	case *device.Switch:
		return "switch"
	default:
		panic(fmt.Sprintf("unknown device type %T", d))
	}
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	var entries []deviceEntry

	m.frozen(func() {
		for _, d := range m.source.Devices() {
			entries = append(entries, deviceEntry{
				Name:  d.Name(),
				Kind:  kindOf(d),
				Ports: d.NumPorts(),
			})
		}
	})

	if entries == nil {
		entries = []deviceEntry{}
	}

	writeJSON(w, entries)
}

func (m *Monitor) deviceDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	d := m.findDeviceOr404(w, name)
	if d == nil {
		return
	}

	m.frozen(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(d)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(w)

		dieOnErr(err)
	})
}

type fieldReq struct {
	DeviceName string `json:"device_name,omitempty"`
	FieldName  string `json:"field_name,omitempty"`
}

func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	d := m.findDeviceOr404(w, req.DeviceName)
	if d == nil {
		return
	}

	m.frozen(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(d)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
		dieOnErr(err)

		err = serializer.Serialize(w)
		dieOnErr(err)
	})
}

type switchPortEntry struct {
	Port      string   `json:"port"`
	Connected bool     `json:"connected"`
	Buffered  int      `json:"buffered"`
	Learned   []string `json:"learned"`
}

func (m *Monitor) switchTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	d := m.findDeviceOr404(w, name)
	if d == nil {
		return
	}

	s, ok := d.(*device.Switch)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_, err := w.Write([]byte("Device is not a switch"))
		dieOnErr(err)

		return
	}

	entries := make([]switchPortEntry, 0, s.NumPorts())

	m.frozen(func() {
		for i := 0; i < s.NumPorts(); i++ {
			e := switchPortEntry{
				Port:      s.PortName(i),
				Connected: s.Port(i).Connected(),
				Buffered:  s.Buffered(i),
				Learned:   []string{},
			}

			for _, mac := range s.Learned(i) {
				e.Learned = append(e.Learned, mac.String())
			}

			entries = append(entries, e)
		}
	})

	writeJSON(w, entries)
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) device.Device {
	d, ok := m.source.Device(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Device not found"))
		dieOnErr(err)

		return nil
	}

	return d
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	writeJSON(w, m.progressBars)
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

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
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

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
