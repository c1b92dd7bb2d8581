package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/bookedbarber/internal/domain/appointment"
	"github.com/BruksfildServices01/bookedbarber/internal/models"
)

// Store keeps every table in process memory. Transaction writes are staged,
// so a rolled back transaction leaves no trace. LockBarber serialises
// transactions per barber; transactions on different barbers run
// concurrently.
type Store struct {
	defaults domain.PolicyDefaults

	mu sync.RWMutex

	rowMu      sync.Mutex
	barberRows map[uint]chan struct{}

	shops        map[uint]models.Barbershop
	barbers      map[uint]models.User
	products     map[uint]models.BarberProduct
	workingHours []models.WorkingHours
	clients      map[uint]models.Client
	appointments map[uint]models.Appointment

	nextID uint
	fail   error
}

func NewStore(defaults domain.PolicyDefaults) *Store {
	return &Store{
		defaults:     defaults,
		shops:        map[uint]models.Barbershop{},
		barbers:      map[uint]models.User{},
		products:     map[uint]models.BarberProduct{},
		clients:      map[uint]models.Client{},
		appointments: map[uint]models.Appointment{},
		barberRows:   map[uint]chan struct{}{},
	}
}

// FailWith makes every subsequent call return err. Nil restores normal
// operation.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// ======================================================
// Seeding
// ======================================================

func (s *Store) AddBarbershop(shop models.Barbershop) models.Barbershop {
	s.mu.Lock()
	defer s.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = s.id()
	}
	s.shops[shop.ID] = shop
	return shop
}

// UpdateBarbershop replaces a stored barbershop.
func (s *Store) UpdateBarbershop(shop models.Barbershop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ID] = shop
}

func (s *Store) AddBarber(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.Role == "" {
		u.Role = models.RoleBarber
	}
	s.barbers[u.ID] = u
	return u
}

func (s *Store) AddProduct(p models.BarberProduct) models.BarberProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.products[p.ID] = p
	return p
}

func (s *Store) AddWorkingHours(wh models.WorkingHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wh.ID == 0 {
		wh.ID = s.id()
	}
	s.workingHours = append(s.workingHours, wh)
}

// AddAppointment stores ap as is, bypassing the overlap check.
func (s *Store) AddAppointment(ap models.Appointment) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == 0 {
		ap.ID = s.id()
	}
	if ap.Status == "" {
		ap.Status = string(domain.StatusScheduled)
	}
	s.appointments[ap.ID] = ap
	return ap
}

// Appointments returns every stored appointment ordered by id.
func (s *Store) Appointments() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, ap := range s.appointments {
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Clients() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ======================================================
// PolicyConfig / TenantDirectory
// ======================================================

func (s *Store) ForTenant(_ context.Context, tenantID uint) (domain.BusinessPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return domain.BusinessPolicy{}, s.fail
	}
	shop, ok := s.shops[tenantID]
	if !ok {
		return domain.BusinessPolicy{}, domain.ErrTenantNotFound
	}
	return domain.PolicyFromBarbershop(&shop, s.defaults)
}

func (s *Store) TenantBySlug(_ context.Context, slug string) (*models.Barbershop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	for _, shop := range s.shops {
		if shop.Slug == slug {
			shop := shop
			return &shop, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (s *Store) ListServices(_ context.Context, tenantID uint) ([]models.BarberProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	var out []models.BarberProduct
	for _, p := range s.products {
		if p.BarbershopID == tenantID && p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ======================================================
// ServiceCatalog / BarberDirectory / AvailabilityStore
// ======================================================

func (s *Store) Resolve(_ context.Context, tenantID uint, name string) (domain.ServiceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return domain.ServiceInfo{}, s.fail
	}

	want := strings.ToLower(strings.TrimSpace(name))
	var match *models.BarberProduct
	for _, p := range s.products {
		p := p
		if p.BarbershopID != tenantID || !p.Active || strings.ToLower(p.Name) != want {
			continue
		}
		if match == nil || p.ID < match.ID {
			match = &p
		}
	}
	if match == nil {
		return domain.ServiceInfo{}, domain.ErrServiceNotFound
	}
	return domain.ServiceFromProduct(match), nil
}

func (s *Store) GetBarber(_ context.Context, tenantID, barberID uint) (domain.BarberInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return domain.BarberInfo{}, s.fail
	}
	u, ok := s.barbers[barberID]
	if !ok || u.BarbershopID != tenantID {
		return domain.BarberInfo{}, domain.ErrBarberNotFound
	}
	return domain.BarberFromUser(&u), nil
}

func (s *Store) ActiveBarbers(_ context.Context, tenantID uint) ([]domain.BarberInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	var out []domain.BarberInfo
	for _, u := range s.barbers {
		u := u
		if u.BarbershopID == tenantID && u.Active {
			out = append(out, domain.BarberFromUser(&u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) WindowsFor(_ context.Context, barberID uint, weekday time.Weekday) ([]domain.AvailabilityWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	var rows []models.WorkingHours
	for _, wh := range s.workingHours {
		if wh.BarberID == barberID && wh.Weekday == int(weekday) {
			rows = append(rows, wh)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTime < rows[j].StartTime })
	return domain.WindowsFromWorkingHours(rows), nil
}

// ======================================================
// AppointmentStore
// ======================================================

func (s *Store) AppointmentsInRange(
	_ context.Context,
	barberID uint,
	from, to time.Time,
	statuses []domain.Status,
) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return filterRange(s.appointments, nil, barberID, from, to, statuses), nil
}

func (s *Store) GetAppointmentForBarber(_ context.Context, appointmentID, barberID uint) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	ap, ok := s.appointments[appointmentID]
	if !ok || ap.BarberID != barberID {
		return nil, domain.ErrAppointmentNotFound
	}
	return &ap, nil
}

func (s *Store) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if _, ok := s.appointments[ap.ID]; !ok {
		return domain.ErrAppointmentNotFound
	}
	ap.UpdatedAt = time.Now()
	s.appointments[ap.ID] = *ap
	return nil
}

func (s *Store) ListAppointmentsForPeriod(
	_ context.Context,
	barberID uint,
	start, end time.Time,
) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := filterRange(s.appointments, nil, barberID, start, end, nil)
	for i := range out {
		if out[i].ClientID != nil {
			out[i].Client = s.clients[*out[i].ClientID]
		}
		out[i].BarberProduct = s.products[out[i].BarberProductID]
	}
	return out, nil
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.AppointmentTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{store: s}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// commit applies staged writes. Overlaps are checked again against what
// other transactions committed meanwhile, like a deferred constraint.
func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return fmt.Errorf("commit: %w", s.fail)
	}

	for _, ap := range tx.appointments {
		if err := overlapsCommitted(s.appointments, &ap); err != nil {
			return err
		}
	}

	// a client created concurrently under the same phone wins
	remap := map[uint]uint{}
	for _, c := range tx.clients {
		if existing, ok := s.clientByPhone(c.BarbershopID, c.Phone); ok {
			remap[c.ID] = existing
			continue
		}
		s.clients[c.ID] = c
	}
	for _, ap := range tx.appointments {
		if ap.ClientID != nil {
			if id, ok := remap[*ap.ClientID]; ok {
				ap.ClientID = &id
			}
		}
		s.appointments[ap.ID] = ap
	}
	return nil
}

func (s *Store) clientByPhone(tenantID uint, phone string) (uint, bool) {
	for _, c := range s.clients {
		if c.BarbershopID == tenantID && c.Phone == phone {
			return c.ID, true
		}
	}
	return 0, false
}

func (s *Store) barberRow(barberID uint) chan struct{} {
	s.rowMu.Lock()
	defer s.rowMu.Unlock()
	ch, ok := s.barberRows[barberID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.barberRows[barberID] = ch
	}
	return ch
}

// memTx stages writes until WithinTx commits them.
type memTx struct {
	store        *Store
	held         []chan struct{}
	heldIDs      []uint
	clients      []models.Client
	appointments []models.Appointment
}

func (t *memTx) release() {
	for _, ch := range t.held {
		<-ch
	}
	t.held = nil
	t.heldIDs = nil
}

// LockBarber holds the barber's row until the transaction ends, the way
// SELECT ... FOR UPDATE does.
func (t *memTx) LockBarber(ctx context.Context, barberID uint) error {
	t.store.mu.RLock()
	fail := t.store.fail
	_, ok := t.store.barbers[barberID]
	t.store.mu.RUnlock()
	if fail != nil {
		return fail
	}
	if !ok {
		return domain.ErrBarberNotFound
	}

	for _, id := range t.heldIDs {
		if id == barberID {
			return nil
		}
	}

	ch := t.store.barberRow(barberID)
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, ch)
		t.heldIDs = append(t.heldIDs, barberID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *memTx) AppointmentsInRangeForUpdate(
	_ context.Context,
	barberID uint,
	from, to time.Time,
	statuses []domain.Status,
) ([]models.Appointment, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	if t.store.fail != nil {
		return nil, t.store.fail
	}
	return filterRange(t.store.appointments, t.appointments, barberID, from, to, statuses), nil
}

func (t *memTx) ResolveClient(_ context.Context, tenantID uint, ref domain.ClientRef) (*uint, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.fail != nil {
		return nil, t.store.fail
	}

	if ref.ClientID != nil {
		c, ok := t.store.clients[*ref.ClientID]
		if !ok || c.BarbershopID != tenantID {
			return nil, fmt.Errorf("client %d not found", *ref.ClientID)
		}
		return &c.ID, nil
	}
	if ref.IsGuest() {
		return nil, nil
	}

	phone := strings.TrimSpace(ref.Phone)
	for _, c := range t.store.clients {
		if c.BarbershopID == tenantID && c.Phone == phone {
			id := c.ID
			return &id, nil
		}
	}
	for _, c := range t.clients {
		if c.BarbershopID == tenantID && c.Phone == phone {
			id := c.ID
			return &id, nil
		}
	}

	c := models.Client{
		ID:           t.store.id(),
		BarbershopID: tenantID,
		Name:         strings.TrimSpace(ref.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(ref.Email),
		CreatedAt:    time.Now(),
	}
	if c.Name == "" {
		c.Name = phone
	}
	t.clients = append(t.clients, c)
	return &c.ID, nil
}

// Insert stages ap after checking it against committed and staged rows.
func (t *memTx) Insert(_ context.Context, ap *models.Appointment) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.fail != nil {
		return t.store.fail
	}

	if err := overlapsCommitted(t.store.appointments, ap); err != nil {
		return err
	}
	for i := range t.appointments {
		if err := overlapError(&t.appointments[i], ap); err != nil {
			return err
		}
	}

	now := time.Now()
	ap.ID = t.store.id()
	ap.CreatedAt = now
	ap.UpdatedAt = now
	t.appointments = append(t.appointments, *ap)
	return nil
}

// overlapsCommitted enforces the same non-overlap rule as the database
// exclusion constraint.
func overlapsCommitted(committed map[uint]models.Appointment, ap *models.Appointment) error {
	for _, other := range committed {
		if err := overlapError(&other, ap); err != nil {
			return err
		}
	}
	return nil
}

func overlapError(other, ap *models.Appointment) error {
	if other.ID == ap.ID || other.BarberID != ap.BarberID {
		return nil
	}
	if !domain.Status(other.Status).Blocks() || !domain.Status(ap.Status).Blocks() {
		return nil
	}
	if domain.AppointmentEffective(other).Overlaps(domain.AppointmentEffective(ap)) {
		return fmt.Errorf("%w: overlaps appointment %d", domain.ErrConstraintViolation, other.ID)
	}
	return nil
}

func filterRange(
	committed map[uint]models.Appointment,
	staged []models.Appointment,
	barberID uint,
	from, to time.Time,
	statuses []domain.Status,
) []models.Appointment {

	match := func(ap models.Appointment) bool {
		if ap.BarberID != barberID || ap.StartTime.Before(from) || !ap.StartTime.Before(to) {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if string(st) == ap.Status {
				return true
			}
		}
		return false
	}

	var out []models.Appointment
	for _, ap := range committed {
		if match(ap) {
			out = append(out, ap)
		}
	}
	for _, ap := range staged {
		if match(ap) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

var (
	_ domain.Repository      = (*Store)(nil)
	_ domain.PolicyConfig    = (*Store)(nil)
	_ domain.TenantDirectory = (*Store)(nil)
)
